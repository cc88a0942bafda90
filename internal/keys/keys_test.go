package keys

import (
	"testing"

	"layout-translator/internal/aggregate"
	"layout-translator/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"snake case", "welcome_message", "welcome message"},
		{"upper case", "Book_NOW", "book now"},
		{"no separators", "submit", "submit"},
		{"trailing underscore", "back_", "back "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferenceKey(tt.in))
		})
	}
}

func TestLiteralKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Submit", "submit"},
		{"spaces", "Book Now", "book_now"},
		{"hyphen", "Sign-in", "sign_in"},
		{"colon and period", "Total: 5.00", "total__5_00"},
		{"punctuation stripped", "Don't stop!", "dont_stop"},
		{"ellipsis", "Loading...", "loading___"},
		{"emoji stripped", "🌟 Welcome", "_welcome"},
		{"unicode letters kept", "Café Menü", "café_menü"},
		{"newline kept as whitespace", "Line\nTwo", "line\ntwo"},
		{"entities lose punctuation", "Terms &amp; Conditions", "terms_amp_conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LiteralKey(tt.in))
		})
	}
}

func TestKeysAreDeterministic(t *testing.T) {
	inputs := []string{"Submit", "Book Now", "Ünïcödé-Text: ok.", "welcome_message"}
	for _, in := range inputs {
		first := LiteralKey(in)
		for range 10 {
			assert.Equal(t, first, LiteralKey(in))
		}
		assert.Equal(t, ReferenceKey(in), ReferenceKey(in))
	}
}

func TestKeepLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{":", false},
		{"OK", false},
		{"  OK  ", false},
		{"Yes", true},
		{"@string/submit", false},
		{"@+id/thing", false},
		{" @string/submit", true},
		{"日本語", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeepLiteral(tt.in), "%q", tt.in)
	}
}

func TestDerive(t *testing.T) {
	set := aggregate.New().
		Fold(parser.Extract(`<Button android:text="Submit" />`)).
		Fold(parser.Extract(`<TextView android:text="@string/welcome_message" />`)).
		Fold(parser.Extract(`<TextView android:text=":" android:text="Book Now" />`))

	m := Derive(set)

	t.Run("Should key references with a placeholder", func(t *testing.T) {
		refs := m.Entries(parser.StringReference)
		require.Len(t, refs, 1)
		assert.Equal(t, Entry{
			Category: parser.StringReference,
			Source:   "@welcome_message",
			Key:      "welcome message",
			Value:    "TODO: Add translation for welcome_message",
		}, refs[0])
	})

	t.Run("Should key surviving literals in sorted order", func(t *testing.T) {
		lits := m.Entries(parser.LiteralText)
		require.Len(t, lits, 2)
		assert.Equal(t, "Book Now", lits[0].Source)
		assert.Equal(t, "book_now", lits[0].Key)
		assert.Equal(t, "Submit", lits[1].Source)
		assert.Equal(t, "submit", lits[1].Key)
		assert.Equal(t, "Submit", lits[1].Value)
	})

	t.Run("Should omit filtered literals entirely", func(t *testing.T) {
		_, short := m.Keys[":"]
		_, ref := m.Keys["@string/welcome_message"]
		assert.False(t, short)
		assert.False(t, ref)
		assert.Equal(t, 3, m.Len())
	})

	t.Run("Should list references before literals", func(t *testing.T) {
		all := m.All()
		require.Len(t, all, 3)
		assert.Equal(t, parser.StringReference, all[0].Category)
	})
}

func TestDeriveFilterIsIdempotent(t *testing.T) {
	set := aggregate.New().Fold(parser.Extract(
		`android:text="Go" android:text="Save" android:text="@string/x" android:text="Cancel"`))

	first := Derive(set)

	survivors := aggregate.New()
	for _, e := range first.Entries(parser.LiteralText) {
		survivors.Add(parser.LiteralText, e.Source)
	}
	second := Derive(survivors)

	assert.Equal(t, first.Entries(parser.LiteralText), second.Entries(parser.LiteralText))
}

func TestCollisions(t *testing.T) {
	set := aggregate.New()
	set.Add(parser.LiteralText, "Sign-in")
	set.Add(parser.LiteralText, "Sign in")
	set.Add(parser.LiteralText, "Sign in!")
	set.Add(parser.LiteralText, "Register")

	got := Derive(set).Collisions(parser.LiteralText)

	assert.Equal(t, map[string][]string{
		"sign_in": {"Sign in", "Sign in!", "Sign-in"},
	}, got)
}
