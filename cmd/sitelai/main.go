// Command sitelai translates static site pages.
//
//	sitelai build [dir]          translate every page listed in dir/_config.yml
//	sitelai page --lang es FILE  translate one page to stdout or -o
//	sitelai version
//
// Provider, cache, output bucket and logging are configured through
// SITELAI_* environment variables or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/sitelai"
	"github.com/ZaguanLabs/sitelai/cache"
	"github.com/ZaguanLabs/sitelai/config"
	"github.com/ZaguanLabs/sitelai/processor"
	"github.com/ZaguanLabs/sitelai/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd(&app{stdin: stdin, stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// app holds the global flags and the services built from them.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	envFile      string
	providerName string
	sourceLang   string
	cacheFile    string
	dryRun       bool
	jsonOut      bool
	quiet        bool

	cfg        *config.Config
	logger     *slog.Logger
	provider   sitelai.Provider
	echo       *provider.MockProvider
	cache      sitelai.TranslationCache
	closeCache func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   sitelai.Name,
		Short: sitelai.Description,
		Long: `sitelai translates static site pages while keeping their markup intact.

Pages opt in with translate="yes", exclude parts with translate="no" and
provide hand-written translations through data-translate-override-<lang>
and data-<attribute>-<lang>.

Commands:
  build     Translate the pages listed in _config.yml into every language
  page      Translate a single page
  version   Show version information

Providers (SITELAI_PROVIDER):
  google    Google Translate (default; SITELAI_GOOGLE_API_KEY selects the v2 API)
  openai    OpenAI chat completions (SITELAI_OPENAI_API_KEY)
  gemini    Google Gemini (SITELAI_GEMINI_API_KEY or SITELAI_GEMINI_PROJECT)
  echo      Returns the source text, for testing`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load before reading SITELAI_* variables")
	flags.StringVar(&a.providerName, "provider", "", "Translation provider (overrides SITELAI_PROVIDER)")
	flags.StringVar(&a.sourceLang, "source", "", "Source language (overrides SITELAI_SOURCE_LANG)")
	flags.StringVar(&a.cacheFile, "cache-file", "", "Load the translation cache from this file and save it back afterwards")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Show what would be sent for translation without calling a provider")
	flags.BoolVar(&a.jsonOut, "json", false, "Print results as JSON")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress progress output")

	root.AddCommand(
		newBuildCmd(a),
		newPageCmd(a),
		newVersionCmd(a),
	)

	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", sitelai.Name, sitelai.FullVersion())
			commit, date := sitelai.BuildInfo()
			if commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", date)
			}
		},
	}
}

// setup loads the configuration and builds the provider, cache and logger.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.providerName != "" {
		cfg.Provider = a.providerName
	}
	if a.sourceLang != "" {
		cfg.SourceLang = a.sourceLang
	}
	if a.dryRun {
		cfg.Provider = config.ProviderEcho
		cfg.Cache.Disabled = true
		cfg.Cache.RedisURL = ""
		a.cacheFile = ""
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := sitelai.ParseLang(cfg.SourceLang); err != nil {
		return fmt.Errorf("source language: %w", err)
	}
	a.cfg = cfg

	a.logger = cfg.NewLogger(a.stderr)
	if a.quiet {
		a.logger = slog.New(slog.DiscardHandler)
	}

	for _, w := range cfg.Warnings() {
		a.logger.WarnContext(ctx, w, slog.String("provider", cfg.Provider))
	}

	p, err := cfg.NewProvider(ctx)
	if err != nil {
		return err
	}
	a.provider = p
	a.echo, _ = p.(*provider.MockProvider)

	if a.cacheFile != "" {
		cfg.Cache.Disabled = false
		cfg.Cache.RedisURL = ""
	}
	c, closeCache, err := cfg.NewCache(ctx, a.logger)
	if err != nil {
		return err
	}
	a.cache, a.closeCache = c, closeCache

	if a.cacheFile != "" {
		mem, ok := c.(*cache.InMemoryCache)
		if !ok {
			return errors.New("--cache-file needs the in-memory cache")
		}
		n, err := cache.LoadFile(a.cacheFile, mem)
		if err != nil {
			return err
		}
		a.logger.DebugContext(ctx, "cache loaded", slog.String("file", a.cacheFile), slog.Int("entries", n))
	}
	return nil
}

// teardown saves the cache file and releases the cache.
func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.cacheFile != "" {
		if mem, ok := a.cache.(*cache.InMemoryCache); ok {
			mem.Prune()
			if err := cache.SaveFile(a.cacheFile, mem, map[string]string{"source": a.cfg.SourceLang}); err != nil {
				errs = append(errs, err)
			} else {
				a.logger.DebugContext(ctx, "cache saved", slog.String("file", a.cacheFile), slog.Int("entries", mem.Len()))
			}
		}
	}
	if a.closeCache != nil {
		errs = append(errs, a.closeCache())
	}
	return errors.Join(errs...)
}

// translator creates the translator for one target language.
func (a *app) translator(lang string, defaultTranslate, documentLang bool) *sitelai.Translator {
	opts := append(a.cfg.TranslatorOptions(),
		sitelai.WithProcessor(processor.NewHTMLProcessor(processor.WithDocumentLang(documentLang))),
		sitelai.WithDefaultTranslate(defaultTranslate),
		sitelai.WithLogger(a.logger),
	)
	if a.cache != nil {
		opts = append(opts, sitelai.WithCache(a.cache))
	}
	return sitelai.NewTranslator(lang, a.provider, opts...)
}

// sentTexts returns the distinct texts the echo provider received, sorted.
func (a *app) sentTexts() []string {
	if a.echo == nil {
		return nil
	}
	seen := make(map[string]bool)
	var texts []string
	for _, req := range a.echo.Requests() {
		if !seen[req.Text] {
			seen[req.Text] = true
			texts = append(texts, req.Text)
		}
	}
	sort.Strings(texts)
	return texts
}
