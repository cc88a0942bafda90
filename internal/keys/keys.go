// Package keys derives DynamicStringManager lookup keys from layout texts.
//
// Keys are a pure function of the raw text. They are not guaranteed to be
// unique: "Sign-in" and "Sign in" both derive "sign_in". Collisions are
// reported by Mapping.Collisions and left for the catalog owner to resolve.
package keys

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sigil prefixes every Android resource reference.
const Sigil = "@"

// MinLiteralLength is the shortest trimmed literal text worth translating.
const MinLiteralLength = 3

// PlaceholderPrefix precedes the reference name in a reference's value.
const PlaceholderPrefix = "TODO: Add translation for "

var literalSeparators = strings.NewReplacer(
	" ", "_",
	"-", "_",
	":", "_",
	".", "_",
)

func lower(s string) string {
	// A Caser keeps state between calls, so build one per call.
	return cases.Lower(language.Und).String(s)
}

// ReferenceKey derives the key for a @string/ resource name.
func ReferenceKey(name string) string {
	return strings.ReplaceAll(lower(name), "_", " ")
}

// LiteralKey derives the key for hardcoded layout text.
func LiteralKey(text string) string {
	key := literalSeparators.Replace(lower(text))
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, key)
}

// KeepLiteral reports whether a hardcoded text should get a mapping entry.
func KeepLiteral(text string) bool {
	if strings.HasPrefix(text, Sigil) {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinLiteralLength
}

// Placeholder is the value emitted for a reference with no known text.
func Placeholder(name string) string {
	return PlaceholderPrefix + name
}
