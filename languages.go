package sitelai

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ParseLang validates a language code such as "es", "es_ES" or "pt-BR".
func ParseLang(code string) (language.Tag, error) {
	if strings.TrimSpace(code) == "" {
		return language.Und, fmt.Errorf("empty language code")
	}
	tag, err := language.Parse(NormalizeLocale(code))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag, nil
}

// BaseLang extracts the base language code (e.g., "es" from "es_ES").
func BaseLang(code string) string {
	if tag, err := ParseLang(code); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	code = NormalizeLocale(code)
	return strings.ToLower(strings.Split(code, "-")[0])
}

// SameLanguage reports whether two codes share a base language.
func SameLanguage(a, b string) bool {
	return BaseLang(a) == BaseLang(b)
}

// GetLanguageName returns the English name for a language code, used in
// provider prompts. Falls back to the code itself if unknown.
func GetLanguageName(code string) string {
	tag, err := ParseLang(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[BaseLang(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}

// NormalizeLocale converts a language code to BCP 47 separators (e.g., "es_ES" → "es-ES").
func NormalizeLocale(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
}

// ToHTMLLang converts a code to the canonical lang attribute value (e.g., "es_es" → "es-ES").
func ToHTMLLang(code string) string {
	if tag, err := ParseLang(code); err == nil {
		return tag.String()
	}
	return NormalizeLocale(code)
}
