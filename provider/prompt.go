package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/sitelai"
)

var styleDescriptions = map[sitelai.TranslationStyle]string{
	sitelai.StyleFormal:    "Use formal, professional language suitable for official documents.",
	sitelai.StyleNeutral:   "Use a neutral, professional tone suitable for general web content.",
	sitelai.StyleCasual:    "Use casual, conversational language suitable for blogs and social media.",
	sitelai.StyleMarketing: "Use persuasive, engaging language suitable for promotional content.",
	sitelai.StyleTechnical: "Use precise, technical language suitable for documentation.",
}

func styleDescription(style sitelai.TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[sitelai.StyleNeutral]
}

// localeHints clarify regional variants the model tends to mix up.
var localeHints = map[string]string{
	"es-ES": "Use Castilian Spanish as spoken in Spain (vosotros, ordenador).",
	"es-MX": "Use Mexican Spanish (ustedes, computadora).",
	"pt-BR": "Use Brazilian Portuguese.",
	"pt-PT": "Use European Portuguese as spoken in Portugal.",
	"nb-NO": "Use Norwegian Bokmål, not Nynorsk.",
	"fr-CA": "Use Canadian French.",
	"zh-CN": "Use Simplified Chinese characters.",
	"zh-TW": "Use Traditional Chinese characters as used in Taiwan.",
	"en-GB": "Use British English spelling.",
}

func localeHint(lang string) string {
	return localeHints[sitelai.ToHTMLLang(lang)]
}

// buildSystemPrompt renders the instructions shared by the chat providers.
func buildSystemPrompt(req TranslateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	sourceName := sitelai.GetLanguageName(sourceLang)
	targetName := sitelai.GetLanguageName(req.TargetLang)

	contextText := "The content is a page of a static website."
	if req.Context != "" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are an expert native translator. You translate %s content to %s with the fluency and nuance of a highly educated native speaker.

# Context
%s

# Register
%s

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound natural to a native speaker.
- **Idioms**: Never translate idioms literally. Replace them with natural %s equivalents.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Use idiomatic punctuation for the target language.`,
		sourceName, targetName, contextText, styleDescription(req.Style), targetName)

	if hint := localeHint(req.TargetLang); hint != "" {
		fmt.Fprintf(&b, "\n- **Locale**: %s", hint)
	}

	if req.Format == sitelai.FormatHTML {
		b.WriteString(`

# Markup
The text is an HTML fragment.
- Keep every tag and attribute exactly as written; translate only the text between tags.
- You may move inline tags to follow the target word order, but never drop, add or nest them differently.
- Return every <span data-sitelai-keep="N"></span> element exactly once, unchanged and empty.
- Keep character entities such as &amp; and &lt; as entities.`)
	}

	if len(req.Glossary) > 0 {
		b.WriteString("\n\n# Glossary\nWhen you encounter these phrases, prefer these translations (unless context demands otherwise):")
		keys := make([]string, 0, len(req.Glossary))
		for source := range req.Glossary {
			keys = append(keys, source)
		}
		sort.Strings(keys)
		for _, source := range keys {
			fmt.Fprintf(&b, "\n- \"%s\" → %s", source, req.Glossary[source])
		}
	}

	if len(req.ExcludedTerms) > 0 {
		fmt.Fprintf(&b, "\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s",
			strings.Join(req.ExcludedTerms, "\n- "))
	}

	b.WriteString(`

# Format
Return a valid JSON object with a single key "translation" holding the translated text.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`)

	return b.String()
}

// parseTranslation extracts the translated text from a model reply. It
// accepts {"translation": "..."}, {"translations": ["..."]}, any object
// with a single string or array value, a bare JSON array or string, and
// finally the reply itself when it is not JSON.
func parseTranslation(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return "", &sitelai.ProviderError{
			Message:   "empty response from model",
			Retryable: true,
			Cause:     sitelai.ErrEmptyTranslation,
		}
	}

	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		if content[0] == '{' || content[0] == '[' {
			return "", &sitelai.ProviderError{
				Message: "invalid response format from model",
				Cause:   err,
			}
		}
		return content, nil
	}

	if s, ok := firstString(value, "translation", "translations", "text", "translatedText"); ok {
		return s, nil
	}

	return "", &sitelai.ProviderError{Message: "invalid response format from model"}
}

// firstString walks a decoded JSON value, preferring the given keys, and
// returns the first string found.
func firstString(v any, keys ...string) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []any:
		if len(t) == 0 {
			return "", false
		}
		var parts []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == len(t) {
			return strings.Join(parts, ""), true
		}
		return firstString(t[0], keys...)
	case map[string]any:
		for _, key := range keys {
			if inner, ok := t[key]; ok {
				if s, ok := firstString(inner, keys...); ok {
					return s, true
				}
			}
		}
		if len(t) == 1 {
			for _, inner := range t {
				return firstString(inner, keys...)
			}
		}
	}
	return "", false
}
