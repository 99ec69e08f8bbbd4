package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/sitelai"
)

// ConfigFileName is the site configuration file read by LoadConfig.
const ConfigFileName = "_config.yml"

// DefaultConcurrency bounds the number of pages translated at once.
const DefaultConcurrency = 4

// ErrNoTranslations is returned when the site configuration has no
// translations section.
var ErrNoTranslations = errors.New("no translations section")

// reservedFields are written by the pipeline into every translated page.
var reservedFields = map[string]bool{
	"title":     true,
	"layout":    true,
	"permalink": true,
	"lang":      true,
	"lang-ref":  true,
}

// Config is the translations section of _config.yml:
//
//	translations:
//	  langs: [es, fr]
//	  pages:
//	    - src: about.html
//	      lang-ref: about
//	      es:
//	        title: "Acerca de"
//	        permalink: /es/acerca/
type Config struct {
	// Source is the language pages are written in (default "en").
	Source string `yaml:"source,omitempty"`
	// Langs lists the target languages.
	Langs []string `yaml:"langs"`
	// Fields are source front matter fields translated into every page.
	Fields []string `yaml:"fields,omitempty"`
	// Concurrency bounds parallel page jobs (default 4).
	Concurrency int `yaml:"concurrency,omitempty"`
	// DefaultTranslate makes every page translatable unless it opts out.
	DefaultTranslate bool `yaml:"default-translate,omitempty"`
	// Pages lists the source pages.
	Pages []Page `yaml:"pages"`
}

// Page is one source page and its per-language settings.
type Page struct {
	Src     string              `yaml:"src"`
	LangRef string              `yaml:"lang-ref,omitempty"`
	Langs   map[string]PageLang `yaml:",inline"`
}

// PageLang holds the settings of a page in one target language.
type PageLang struct {
	Title     string `yaml:"title,omitempty"`
	Permalink string `yaml:"permalink,omitempty"`
}

// Stem returns the page path without its .html extension.
func (p Page) Stem() string {
	return strings.TrimSuffix(p.Src, ".html")
}

// For returns the settings of the page in lang. A missing permalink
// defaults to /<lang>/<stem>, or /<lang>/ for an index page.
func (p Page) For(lang string) PageLang {
	pl := p.Langs[lang]
	if pl.Permalink == "" {
		stem := p.Stem()
		switch {
		case stem == "index":
			pl.Permalink = "/" + lang + "/"
		case strings.HasSuffix(stem, "/index"):
			pl.Permalink = "/" + lang + "/" + strings.TrimSuffix(stem, "index")
		default:
			pl.Permalink = "/" + lang + "/" + stem
		}
	}
	return pl
}

// Output returns the name the page is written to for lang.
func (p Page) Output(lang string) string {
	return lang + "/" + p.Src
}

// LoadConfig reads the translations section of dir/_config.yml.
func LoadConfig(dir string) (*Config, error) {
	return LoadConfigFS(os.DirFS(dir))
}

// LoadConfigFS reads the translations section of _config.yml in fsys.
func LoadConfigFS(fsys fs.FS) (*Config, error) {
	data, err := fs.ReadFile(fsys, ConfigFileName)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a Jekyll-style configuration document and returns
// its validated translations section.
func ParseConfig(data []byte) (*Config, error) {
	var doc struct {
		Translations *Config `yaml:"translations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	if doc.Translations == nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, ErrNoTranslations)
	}

	cfg := doc.Translations
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// Validate applies defaults and checks the configuration.
func (c *Config) Validate() error {
	if c.Source == "" {
		c.Source = "en"
	}
	if _, err := sitelai.ParseLang(c.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}

	if len(c.Langs) == 0 {
		return errors.New("langs: at least one target language is required")
	}
	seenLang := make(map[string]bool, len(c.Langs))
	for _, lang := range c.Langs {
		if _, err := sitelai.ParseLang(lang); err != nil {
			return fmt.Errorf("langs: %w", err)
		}
		if sitelai.SameLanguage(lang, c.Source) {
			return fmt.Errorf("langs: %q is the source language", lang)
		}
		if seenLang[lang] {
			return fmt.Errorf("langs: %q listed twice", lang)
		}
		seenLang[lang] = true
	}

	for _, f := range c.Fields {
		if reservedFields[f] || f == c.Source {
			return fmt.Errorf("fields: %q is written by the translator and cannot be translated", f)
		}
	}

	seenSrc := make(map[string]bool, len(c.Pages))
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.Src == "" {
			return fmt.Errorf("pages: page #%d has no src", i+1)
		}
		clean := path.Clean(strings.TrimPrefix(p.Src, "./"))
		if !fs.ValidPath(clean) || clean == "." {
			return fmt.Errorf("pages: invalid src %q", p.Src)
		}
		p.Src = clean
		if seenSrc[p.Src] {
			return fmt.Errorf("pages: %q listed twice", p.Src)
		}
		seenSrc[p.Src] = true

		if p.LangRef == "" {
			p.LangRef = path.Base(p.Stem())
		}
		for lang := range p.Langs {
			if !seenLang[lang] {
				return fmt.Errorf("pages: %q has settings for %q which is not in langs", p.Src, lang)
			}
		}
	}

	return nil
}
