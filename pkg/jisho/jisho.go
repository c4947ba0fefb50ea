// Package jisho looks words up in the jisho.org word search API.
package jisho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

// DefaultBaseURL is the public word search endpoint.
const DefaultBaseURL = "https://jisho.org/api/v1/search/words"

// maxBodySize bounds how much of a response we are willing to decode.
const maxBodySize = 4 * 1024 * 1024

// Client queries the Jisho API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Logger receives diagnostics for failed requests. nil means no logging.
	Logger *log.Logger
}

// NewClient creates a Client for the public API using the default transport.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
	}
}

// Match is a single search hit, shaped for display.
type Match struct {
	Word     string
	Reading  string
	Meanings string
	JLPT     []string
	Common   bool
}

// Lookup returns the meaning and auto tags of the first entry matching word.
// Any failure yields wordlog.NotFound.
func (c *Client) Lookup(ctx context.Context, word string) wordlog.LookupResult {
	entries, err := c.search(ctx, word)
	if err != nil {
		c.logf("lookup %q: %v", word, err)
		return wordlog.NotFound(word)
	}
	if len(entries) == 0 || len(entries[0].Senses) == 0 {
		return wordlog.NotFound(word)
	}

	first := entries[0]
	sense := first.Senses[0]
	res := wordlog.LookupResult{
		Word:     word,
		Meaning:  strings.Join(sense.EnglishDefinitions, ", "),
		AutoTags: autoTags(first),
	}
	if len(first.Japanese) > 0 {
		res.Reading = first.Japanese[0].Reading
	}
	return res
}

// Search runs a raw keyword search (English words, "#jlpt-n5", "#common"...)
// and returns at most limit matches. limit <= 0 returns everything.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Match, error) {
	entries, err := c.search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, e := range entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		m := Match{JLPT: e.JLPT, Common: e.IsCommon}
		if len(e.Japanese) > 0 {
			m.Word = e.Japanese[0].Word
			m.Reading = e.Japanese[0].Reading
		}
		if m.Word == "" {
			m.Word = m.Reading
		}
		if len(e.Senses) > 0 {
			m.Meanings = strings.Join(e.Senses[0].EnglishDefinitions, ", ")
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, keyword string) ([]apiEntry, error) {
	reqURL := c.BaseURL + "?" + url.Values{"keyword": {keyword}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jisho: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jisho: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jisho: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("jisho: decode json: %w", err)
	}
	return body.Data, nil
}

// autoTags derives tags from the entry: parts of speech of the first sense,
// JLPT levels and common_word.
func autoTags(e apiEntry) []string {
	var tags []string
	if len(e.Senses) > 0 {
		tags = append(tags, e.Senses[0].PartsOfSpeech...)
	}
	tags = append(tags, e.JLPT...)
	if e.IsCommon {
		tags = append(tags, wordlog.CommonWordTag)
	}
	return wordlog.MergeTags(tags)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
