// Package lang validates and normalizes language codes and provides the
// script-level text heuristics used by transcript cleaning.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// validLanguages contains ISO 639-1 language codes accepted for transcription
// and synthesis. Not exhaustive, but covers the languages the services handle well.
var validLanguages = map[string]bool{
	"af": true, // Afrikaans
	"ar": true, // Arabic
	"bg": true, // Bulgarian
	"bn": true, // Bengali
	"ca": true, // Catalan
	"cs": true, // Czech
	"da": true, // Danish
	"de": true, // German
	"el": true, // Greek
	"en": true, // English
	"es": true, // Spanish
	"et": true, // Estonian
	"fa": true, // Persian
	"fi": true, // Finnish
	"fr": true, // French
	"he": true, // Hebrew
	"hi": true, // Hindi
	"hr": true, // Croatian
	"hu": true, // Hungarian
	"id": true, // Indonesian
	"it": true, // Italian
	"ja": true, // Japanese
	"kk": true, // Kazakh
	"ko": true, // Korean
	"lt": true, // Lithuanian
	"lv": true, // Latvian
	"ms": true, // Malay
	"nl": true, // Dutch
	"no": true, // Norwegian
	"pl": true, // Polish
	"pt": true, // Portuguese
	"ro": true, // Romanian
	"ru": true, // Russian
	"sk": true, // Slovak
	"sl": true, // Slovenian
	"sr": true, // Serbian
	"sv": true, // Swedish
	"th": true, // Thai
	"tr": true, // Turkish
	"uk": true, // Ukrainian
	"ur": true, // Urdu
	"uz": true, // Uzbek
	"vi": true, // Vietnamese
	"zh": true, // Chinese
}

// Language is a normalized ISO 639-1 code, optionally with a region
// ("en", "pt-br"). The zero value means "unspecified / auto-detect".
type Language string

// Parse normalizes and validates a language code.
// Accepts "pt-BR", "pt_BR", "PT-BR", "pt-br" and returns "pt-br".
func Parse(code string) (Language, error) {
	if code == "" {
		return "", nil
	}
	normalized := Normalize(code)
	if !validLanguages[baseOf(normalized)] {
		return "", fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'ru', 'pt-BR'): %w",
			code, ErrInvalid)
	}
	return Language(normalized), nil
}

// Normalize lowercases a code and converts underscores to hyphens.
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

func baseOf(normalized string) string {
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}

// IsZero reports whether the language is unspecified.
func (l Language) IsZero() bool { return l == "" }

// BaseCode returns the ISO 639-1 base code without a region.
// The transcription API only accepts base codes, not regional variants.
// Examples: "pt-br" -> "pt", "zh-cn" -> "zh", "en" -> "en".
func (l Language) BaseCode() string {
	if l == "" {
		return ""
	}
	return baseOf(string(l))
}

// DisplayName returns the English name of the language ("ru" -> "Russian"),
// used when instructing the translation model. Falls back to the raw code for
// tags the display tables do not know.
func (l Language) DisplayName() string {
	if l == "" {
		return ""
	}
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return string(l)
	}
	return name
}

// String returns the normalized code.
func (l Language) String() string { return string(l) }
