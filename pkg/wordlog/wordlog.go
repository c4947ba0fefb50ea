// Package wordlog holds the data model shared by the dictionary clients,
// the log stores and the interactive shell.
package wordlog

import (
	"context"
	"strings"
)

// NotFoundMeaning is the meaning reported when no dictionary knows a word.
const NotFoundMeaning = "Meaning not found."

// DefaultMaxExamples is how many example sentences a lookup asks for when
// the caller does not say.
const DefaultMaxExamples = 2

// LookupResult is what a dictionary returns for a single word.
type LookupResult struct {
	Word     string
	Reading  string // kana reading, display only
	Meaning  string
	AutoTags []string // sorted, deduplicated, normalized
}

// NotFound returns the sentinel result for word.
func NotFound(word string) LookupResult {
	return LookupResult{Word: word, Meaning: NotFoundMeaning, AutoTags: []string{}}
}

// Found reports whether the result carries a real meaning.
func (r LookupResult) Found() bool {
	return r.Meaning != "" && r.Meaning != NotFoundMeaning
}

// Entry is a single logged lookup.
type Entry struct {
	Date      string   `json:"-"` // YYYY-MM-DD, the key of the JSON document
	Time      string   `json:"time"`
	Word      string   `json:"word"`
	Meaning   string   `json:"meaning"`
	Sentences []string `json:"sentences"`
	Tags      []string `json:"tags"`
}

// FormatSentence pairs a source sentence with its translation.
func FormatSentence(source, translation string) string {
	return strings.TrimSpace(source) + " - " + strings.TrimSpace(translation)
}

// Dictionary turns a word into a LookupResult. Implementations never fail:
// anything that goes wrong is reported as NotFound.
type Dictionary interface {
	Lookup(ctx context.Context, word string) LookupResult
}

// SentenceSource returns up to max example sentences for a word.
type SentenceSource interface {
	Examples(ctx context.Context, word string, max int) []string
}

// Log is the durable record of lookups. Entries are only ever appended.
type Log interface {
	Append(ctx context.Context, e Entry) error
	EntriesOn(ctx context.Context, date string) ([]Entry, error)
	// All returns every entry ordered by date, then insertion order.
	All(ctx context.Context) ([]Entry, error)
}

// Chain asks each dictionary in turn and returns the first real meaning.
type Chain []Dictionary

// Lookup implements Dictionary.
func (c Chain) Lookup(ctx context.Context, word string) LookupResult {
	for _, d := range c {
		if d == nil {
			continue
		}
		if r := d.Lookup(ctx, word); r.Found() {
			return r
		}
	}
	return NotFound(word)
}
