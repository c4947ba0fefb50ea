package wordlog

import (
	"context"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is a single morpheme of the user's query.
type Token struct {
	BaseForm   string // dictionary form of the typed "食べ" is "食べる"
	PrimaryPOS string // first IPA feature, e.g. "動詞"
}

// Analyzer finds the dictionary form of inflected words.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer creates a new tokenizer instance.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with base forms.
func (a *Analyzer) Analyze(text string) []Token {
	var result []Token
	for _, token := range a.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()

		// IPA features: 0 POS, 1-3 sub-POS, 4-5 conjugation, 6 base form.
		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		pos := ""
		if len(features) > 0 {
			pos = features[0]
		}
		result = append(result, Token{
			BaseForm:   base,
			PrimaryPOS: pos,
		})
	}
	return result
}

// BaseForm returns the dictionary form of the first content word in text,
// skipping particles, auxiliaries and symbols. It returns text unchanged
// when nothing qualifies.
func (a *Analyzer) BaseForm(text string) string {
	for _, t := range a.Analyze(text) {
		switch t.PrimaryPOS {
		case "助詞", "助動詞", "記号":
			continue
		}
		return t.BaseForm
	}
	return text
}

// LemmaDictionary retries a failed lookup with the query's dictionary form,
// so that "食べた" finds the entry for "食べる".
type LemmaDictionary struct {
	Dictionary Dictionary
	Analyzer   *Analyzer
}

// Lookup implements Dictionary.
func (l LemmaDictionary) Lookup(ctx context.Context, word string) LookupResult {
	r := l.Dictionary.Lookup(ctx, word)
	if r.Found() || l.Analyzer == nil {
		return r
	}
	base := l.Analyzer.BaseForm(word)
	if base == "" || base == word {
		return r
	}
	if lemma := l.Dictionary.Lookup(ctx, base); lemma.Found() {
		return lemma
	}
	return r
}
