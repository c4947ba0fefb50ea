package dictionary

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

// Index answers lookups from a JMdict file held in memory.
type Index struct {
	// Key: Kanji or Kana text (kana folded to hiragana), Value: matching entries.
	index map[string][]JMdictEntry
}

// NewIndex builds an in-memory index of the provided dictionary.
func NewIndex(entries []JMdictEntry) *Index {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			key := ToHiragana(k.Text)
			idx[key] = append(idx[key], e)
		}
	}
	return &Index{index: idx}
}

// Open loads the dictionary file at path and indexes it.
func Open(path string) (*Index, error) {
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

// Len is the number of indexed forms.
func (ix *Index) Len() int {
	return len(ix.index)
}

// Lookup implements wordlog.Dictionary using the first sense of the best
// matching entry.
func (ix *Index) Lookup(_ context.Context, word string) wordlog.LookupResult {
	matches := ix.findMatches(word)
	if len(matches) == 0 || len(matches[0].Sense) == 0 {
		return wordlog.NotFound(word)
	}
	e := matches[0]
	sense := e.Sense[0]

	var glosses []string
	for _, g := range sense.Gloss {
		if g.Lang == "" || g.Lang == "eng" {
			glosses = append(glosses, g.Text)
		}
	}
	if len(glosses) == 0 {
		return wordlog.NotFound(word)
	}

	tags := append([]string{}, sense.PartOfSpeech...)
	if isCommon(e) {
		tags = append(tags, wordlog.CommonWordTag)
	}
	return wordlog.LookupResult{
		Word:     word,
		Reading:  primaryReading(e),
		Meaning:  strings.Join(glosses, ", "),
		AutoTags: wordlog.MergeTags(tags),
	}
}

func (ix *Index) findMatches(word string) []JMdictEntry {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}

	candidates := make(map[string]JMdictEntry) // dedupe by entry ID
	for _, term := range []string{word, ToHiragana(word)} {
		for _, e := range ix.index[term] {
			candidates[e.ID] = e
		}
	}

	var results []JMdictEntry
	for _, entry := range candidates {
		results = append(results, entry)
	}

	// Common entries first, then lowest numeric ID.
	sort.Slice(results, func(i, j int) bool {
		ci, cj := isCommon(results[i]), isCommon(results[j])
		if ci != cj {
			return ci
		}
		return idLess(results[i].ID, results[j].ID)
	})
	return results
}

// idLess orders JMdict sequence numbers numerically. IDs that are not
// numbers sort after numeric ones, by string.
func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func isCommon(e JMdictEntry) bool {
	for _, k := range e.Kanji {
		if k.Common {
			return true
		}
	}
	for _, k := range e.Kana {
		if k.Common {
			return true
		}
	}
	return false
}

// primaryReading prefers the first common kana form.
func primaryReading(e JMdictEntry) string {
	for _, k := range e.Kana {
		if k.Common {
			return k.Text
		}
	}
	if len(e.Kana) > 0 {
		return e.Kana[0].Text
	}
	return ""
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
