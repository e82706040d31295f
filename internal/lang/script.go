package lang

import "unicode"

// Script identifies which alphabet counts as "real speech letters" when
// judging whether a transcript segment is garbage (hesitation sounds, noise
// the recognizer rendered as a couple of characters).
type Script int

const (
	// ScriptAny counts every Unicode letter.
	ScriptAny Script = iota
	// ScriptArabic counts Arabic-block letters only.
	ScriptArabic
	// ScriptCyrillic counts Cyrillic-block letters only.
	ScriptCyrillic
	// ScriptLatin counts Latin-block letters only.
	ScriptLatin
)

// ScriptFor returns the script to use for garbage detection in the given
// language. Unknown languages fall back to counting any letter.
func ScriptFor(l Language) Script {
	switch l.BaseCode() {
	case "ar", "fa", "ur":
		return ScriptArabic
	case "ru", "uk", "bg", "sr", "mk", "kk":
		return ScriptCyrillic
	case "en", "fr", "de", "es", "pt", "it", "nl", "pl", "tr", "uz", "vi":
		return ScriptLatin
	default:
		return ScriptAny
	}
}

// CountLetters returns the number of runes in text that belong to the script.
func CountLetters(text string, script Script) int {
	n := 0
	for _, r := range text {
		if isScriptLetter(r, script) {
			n++
		}
	}
	return n
}

func isScriptLetter(r rune, script Script) bool {
	switch script {
	case ScriptArabic:
		return unicode.Is(unicode.Arabic, r)
	case ScriptCyrillic:
		return unicode.Is(unicode.Cyrillic, r)
	case ScriptLatin:
		return unicode.Is(unicode.Latin, r)
	default:
		return unicode.IsLetter(r)
	}
}
