package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/site"
	"github.com/ZaguanLabs/sitelai/sink"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		langs        []string
		outDir       string
		allowPartial bool
		concurrency  int
		documentLang bool
	)

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Translate the pages listed in _config.yml",
		Long: `Translate every page listed under translations.pages in dir/_config.yml
(default: the current directory) into every language in translations.langs.
Each page is written to <lang>/<src> with a new front matter block.

Pages where some text could not be translated are skipped unless
--allow-partial is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if outDir == "" {
				outDir = dir
			}

			siteCfg, err := site.LoadConfig(dir)
			if err != nil {
				return err
			}
			if a.sourceLang != "" && !sitelai.SameLanguage(a.sourceLang, siteCfg.Source) {
				return fmt.Errorf("--source %q conflicts with translations.source %q in %s", a.sourceLang, siteCfg.Source, site.ConfigFileName)
			}

			if err := a.setup(ctx); err != nil {
				return err
			}
			// The site's source language drives every translator of the build.
			a.cfg.SourceLang = siteCfg.Source
			defer func() {
				if err := a.teardown(ctx); err != nil {
					a.logger.ErrorContext(ctx, "cleanup failed", slog.Any("error", err))
				}
			}()

			var out sink.Writer
			if a.dryRun {
				out = sink.NewMemoryWriter()
			} else if out, err = a.cfg.NewWriter(ctx, outDir); err != nil {
				return err
			}

			factory := func(lang string) (*sitelai.Translator, error) {
				return a.translator(lang, siteCfg.DefaultTranslate, documentLang), nil
			}
			pipeline := site.New(siteCfg, os.DirFS(dir), out, factory,
				site.WithLangs(langsOrAll(langs, siteCfg.Langs)...),
				site.WithAllowPartial(allowPartial || a.dryRun),
				site.WithConcurrency(concurrency),
				site.WithLogger(a.logger),
			)

			report, err := pipeline.Run(ctx)
			if err != nil {
				return err
			}

			if a.dryRun {
				return a.printDryRun(dir, langsOrAll(langs, siteCfg.Langs), a.sentTexts())
			}
			if a.jsonOut {
				if err := writeJSON(a.stdout, newReportJSON(report)); err != nil {
					return err
				}
			} else if !a.quiet {
				printReport(a.stderr, report)
			}

			if !report.OK() {
				counts := report.Counts()
				return fmt.Errorf("%d of %d pages not written: %w",
					counts[site.StatusSkipped]+counts[site.StatusFailed], len(report.Results), report.Err())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Languages to build (comma-separated, default: all configured)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: the site directory)")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Write pages even when some text could not be translated")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Pages translated in parallel (default: translations.concurrency)")
	cmd.Flags().BoolVar(&documentLang, "document-lang", false, "Set lang and dir on the <html> element")

	return cmd
}

func langsOrAll(selected, all []string) []string {
	if len(selected) == 0 {
		return all
	}
	return selected
}

func printReport(w io.Writer, report *site.Report) {
	for _, res := range report.Results {
		fmt.Fprintf(w, "%-8s %s", res.Status, res.Output)
		if res.Spans > 0 {
			fmt.Fprintf(w, " (%d spans, %d cached)", res.Spans, res.Cached)
		}
		if res.Err != nil && res.Status == site.StatusFailed {
			fmt.Fprintf(w, ": %v", res.Err)
		}
		fmt.Fprintln(w)
		for _, f := range res.Failures {
			fmt.Fprintf(w, "         ! %s\n", f.Error())
		}
	}

	counts := report.Counts()
	fmt.Fprintf(w, "\nDone in %v\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Written:  %d\n", counts[site.StatusWritten])
	fmt.Fprintf(w, "  Partial:  %d\n", counts[site.StatusPartial])
	fmt.Fprintf(w, "  Skipped:  %d\n", counts[site.StatusSkipped])
	fmt.Fprintf(w, "  Failed:   %d\n", counts[site.StatusFailed])
}
