// Package answer canonicalizes free-text answers and compares them against
// an answer spec that may list several acceptable alternatives.
package answer

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// QuestionType selects the normalization rules for an answer.
type QuestionType string

const (
	TypeTranslation           QuestionType = "translation"
	TypeMultipleChoice        QuestionType = "multiple_choice"
	TypeFillBlank             QuestionType = "fill_blank"
	TypeListening             QuestionType = "listening"
	TypeCharacterWriting      QuestionType = "character_writing"
	TypeKanjiComposition      QuestionType = "kanji_composition"
	TypeScriptTransliteration QuestionType = "script_transliteration"
)

// latinOnly matches transliterations made purely of Latin letters.
var latinOnly = regexp.MustCompile(`^[A-Za-z0-9 '\-]+$`)

// toLower folds case. Casers are stateful, so each call gets its own.
func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Normalize canonicalizes input according to the question type.
func Normalize(input string, qt QuestionType) string {
	switch qt {
	case TypeCharacterWriting:
		return norm.NFC.String(strings.TrimSpace(input))
	case TypeKanjiComposition:
		return normalizeTokens(input)
	case TypeScriptTransliteration:
		s := norm.NFC.String(strings.TrimSpace(input))
		if latinOnly.MatchString(s) {
			return toLower(s)
		}
		return s
	default:
		return normalizeText(input)
	}
}

// normalizeText lowercases, strips diacritics and collapses every run of
// characters that is neither a letter nor a digit into one space.
func normalizeText(input string) string {
	s := toLower(strings.TrimSpace(input))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// normalizeTokens makes multi-character answers order independent.
func normalizeTokens(input string) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '|' || r == ';'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, norm.NFC.String(f))
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Alternatives splits an answer spec on '|' and ';'.
func Alternatives(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool { return r == '|' || r == ';' })
}

// IsCorrect reports whether userAnswer matches any alternative in spec.
func IsCorrect(userAnswer, spec string, qt QuestionType) bool {
	if strings.TrimSpace(userAnswer) == "" || strings.TrimSpace(spec) == "" {
		return false
	}

	got := Normalize(userAnswer, qt)
	if got == "" {
		return false
	}

	for _, alt := range Alternatives(spec) {
		want := Normalize(alt, qt)
		if want != "" && got == want {
			return true
		}
	}
	return false
}
