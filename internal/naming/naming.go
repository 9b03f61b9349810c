// Package naming converts declaration identifiers into the identifiers the
// emitters generate.
package naming

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier into words at underscores, hyphens, and
// lower-to-upper or acronym-to-word case boundaries. Digits stay attached to
// the preceding word.
//
//	Words("getAndInc")   // [get And Inc]
//	Words("get_and_inc") // [get and inc]
//	Words("HTTPServer")  // [HTTP Server]
func Words(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsUpper(r) && unicode.IsUpper(prev) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}

// Pascal converts an identifier to PascalCase. The first rune of every word
// is upper-cased and the rest is kept, so acronyms survive:
//
//	Pascal("get")         // Get
//	Pascal("get_and_inc") // GetAndInc
//	Pascal("userID")      // UserID
func Pascal(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// Unexport lowers the leading rune of s. A leading run of upper-case runes
// is lowered as a unit, keeping the last one when it starts the next word:
//
//	Unexport("CounterMessage") // counterMessage
//	Unexport("HTTPClient")     // httpClient
//	Unexport("ID")             // id
func Unexport(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n > 1 && n < len(runes) && unicode.IsLower(runes[n]):
		n--
	}
	lower := cases.Lower(language.Und)
	return lower.String(string(runes[:n])) + string(runes[n:])
}

// IsIdentifier reports whether s is a valid Go identifier that is not a
// keyword.
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// IsKeyword reports whether s is a Go keyword.
func IsKeyword(s string) bool {
	return token.IsKeyword(s)
}

// Unique appends underscores to name until taken reports false.
func Unique(name string, taken func(string) bool) string {
	for taken(name) {
		name += "_"
	}
	return name
}
