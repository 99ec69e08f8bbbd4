package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/frontmatter"
	"github.com/ZaguanLabs/sitelai/sink"
)

func newPageCmd(a *app) *cobra.Command {
	var (
		lang         string
		output       string
		translateAll bool
		allowPartial bool
		documentLang bool
	)

	cmd := &cobra.Command{
		Use:   "page [FILE]",
		Short: "Translate a single page",
		Long: `Translate one HTML page (or stdin when FILE is omitted or "-").
A front matter block is kept as is and the body is translated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if lang == "" {
				return errors.New("--lang is required")
			}
			if _, err := sitelai.ParseLang(lang); err != nil {
				return err
			}

			input, name, err := readInput(a.stdin, args)
			if err != nil {
				return err
			}

			if err := a.setup(ctx); err != nil {
				return err
			}
			defer func() {
				if err := a.teardown(ctx); err != nil {
					a.logger.ErrorContext(ctx, "cleanup failed", slog.Any("error", err))
				}
			}()

			doc, err := frontmatter.Split(input)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			start := time.Now()
			result, err := a.translator(lang, translateAll, documentLang).ProcessDocument(ctx, name, doc.Body, "html")
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			elapsed := time.Since(start)

			if a.dryRun {
				return a.printDryRun(name, []string{lang}, a.sentTexts())
			}

			if result.Partial() && !allowPartial {
				for _, f := range result.Failures {
					fmt.Fprintf(a.stderr, "  ! %s\n", f.Error())
				}
				return result.Err()
			}

			doc.Body = result.Content
			content, err := doc.Render()
			if err != nil {
				return err
			}

			if a.jsonOut {
				if err := writeJSON(a.stdout, newPageJSON(result, lang, content, elapsed)); err != nil {
					return err
				}
			} else if output == "" {
				fmt.Fprint(a.stdout, content)
			}

			if output != "" {
				w := sink.NewDirWriter(filepath.Dir(output))
				if err := w.Write(ctx, filepath.Base(output), []byte(content)); err != nil {
					return err
				}
			}

			if !a.quiet && !a.jsonOut {
				fmt.Fprintf(a.stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
				fmt.Fprintf(a.stderr, "  Spans:        %d\n", result.Spans)
				fmt.Fprintf(a.stderr, "  Translated:   %d\n", result.Dispatched)
				fmt.Fprintf(a.stderr, "  From cache:   %d\n", result.Cached)
				fmt.Fprintf(a.stderr, "  Failed:       %d\n", len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language code (e.g. es, pt-BR)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&translateAll, "translate-all", false, "Translate the whole page unless it opts out with translate=\"no\"")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Write the page even when some text could not be translated")
	cmd.Flags().BoolVar(&documentLang, "document-lang", false, "Set lang and dir on the <html> element")

	return cmd
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(stdin io.Reader, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(args[0]), nil
}
