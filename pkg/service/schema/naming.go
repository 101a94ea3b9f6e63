package schema

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var namePrefixes = []string{"OData_", customFieldPrefix, publishingPrefix}

var escapedCharPattern = regexp.MustCompile(`_x([0-9a-fA-F]{4})_`)

// FriendlyName turns a source key into a label for operators, e.g.
// "CampoResumo2" becomes "Resumo 2" and "Data_x0020_Evento" becomes "Data Evento".
func FriendlyName(key string) string {
	s := key
	for _, prefix := range namePrefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			s = s[len(prefix):]
			break
		}
	}

	s = decodeEscapes(s)

	words := splitWords(s)
	if len(words) == 0 {
		return key
	}
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

func decodeEscapes(s string) string {
	s = escapedCharPattern.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:6], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(code))
	})

	if strings.Contains(s, "%") {
		if decoded, err := url.PathUnescape(s); err == nil {
			s = decoded
		}
	}
	return s
}

// splitWords splits on separators, lower to upper transitions, acronym
// boundaries ("UIVersion" -> "UI", "Version") and letter/digit boundaries.
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}

		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsLetter(prev) && unicode.IsDigit(r), unicode.IsDigit(prev) && unicode.IsLetter(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}

func capitalizeFirst(w string) string {
	runes := []rune(w)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
