package keys

import (
	"layout-translator/internal/aggregate"
	"layout-translator/internal/parser"
)

// Entry is one line of the generated mapping.
type Entry struct {
	Category parser.Category `json:"-"`
	// Source is "@name" for references and the raw text for literals.
	Source string `json:"source"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// Mapping associates every surviving source with its derived key.
type Mapping struct {
	// Keys maps Source to the derived key.
	Keys map[string]string

	entries map[parser.Category][]Entry
}

// MappedCategories are the categories that receive lookup keys.
var MappedCategories = []parser.Category{
	parser.StringReference,
	parser.LiteralText,
}

// Derive computes entries for references and hardcoded texts of set. Entries
// within a category follow the lexicographic order of their raw values.
func Derive(set *aggregate.TextSet) *Mapping {
	m := &Mapping{
		Keys:    make(map[string]string),
		entries: make(map[parser.Category][]Entry),
	}

	for _, name := range set.Values(parser.StringReference) {
		m.add(Entry{
			Category: parser.StringReference,
			Source:   Sigil + name,
			Key:      ReferenceKey(name),
			Value:    Placeholder(name),
		})
	}

	for _, text := range set.Values(parser.LiteralText) {
		if !KeepLiteral(text) {
			continue
		}
		m.add(Entry{
			Category: parser.LiteralText,
			Source:   text,
			Key:      LiteralKey(text),
			Value:    text,
		})
	}

	return m
}

func (m *Mapping) add(e Entry) {
	m.Keys[e.Source] = e.Key
	m.entries[e.Category] = append(m.entries[e.Category], e)
}

// Entries returns the entries of c in emission order.
func (m *Mapping) Entries(c parser.Category) []Entry {
	return m.entries[c]
}

// All returns every entry, references first.
func (m *Mapping) All() []Entry {
	var all []Entry
	for _, c := range MappedCategories {
		all = append(all, m.entries[c]...)
	}
	return all
}

// Len is the number of entries across all categories.
func (m *Mapping) Len() int {
	return len(m.Keys)
}

// Collisions groups sources that derived the same key within a category.
// Only keys shared by two or more sources are returned.
func (m *Mapping) Collisions(c parser.Category) map[string][]string {
	byKey := make(map[string][]string)
	for _, e := range m.entries[c] {
		byKey[e.Key] = append(byKey[e.Key], e.Source)
	}
	for key, sources := range byKey {
		if len(sources) < 2 {
			delete(byKey, key)
		}
	}
	return byKey
}
