// Package tatoeba fetches example sentence pairs from the Tatoeba search API.
package tatoeba

import (
	"bytes"
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

const (
	// DefaultBaseURL is the public sentence search endpoint.
	DefaultBaseURL = "https://tatoeba.org/en/api_v0/search"
	DefaultFrom    = "jpn"
	DefaultTo      = "eng"

	maxBodySize = 4 * 1024 * 1024
)

// Client queries Tatoeba for sentence pairs.
type Client struct {
	BaseURL    string
	From, To   string
	HTTPClient *http.Client
	// Logger receives diagnostics for failed requests. nil means no logging.
	Logger *log.Logger
}

// NewClient creates a Japanese to English client using the default transport.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		From:       DefaultFrom,
		To:         DefaultTo,
		HTTPClient: http.DefaultClient,
	}
}

type searchResponse struct {
	Results []result `json:"results"`
}

type result struct {
	Text         string          `json:"text"`
	Translations json.RawMessage `json:"translations"`
}

type pair struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Examples returns up to max sentences formatted "<source> - <translation>".
// max <= 0 means wordlog.DefaultMaxExamples. Failures yield an empty slice.
func (c *Client) Examples(ctx context.Context, word string, max int) []string {
	if max <= 0 {
		max = wordlog.DefaultMaxExamples
	}
	results, err := c.search(ctx, word)
	if err != nil {
		c.logf("examples %q: %v", word, err)
		return []string{}
	}

	out := []string{}
	for _, r := range results {
		if len(out) >= max {
			break
		}
		source := strings.TrimSpace(r.Text)
		if source == "" {
			continue
		}
		translation := ""
		for _, p := range flattenTranslations(r.Translations) {
			if t := strings.TrimSpace(p.Text); t != "" {
				translation = t
				break
			}
		}
		if translation == "" {
			continue
		}
		out = append(out, wordlog.FormatSentence(source, translation))
	}
	return out
}

func (c *Client) search(ctx context.Context, word string) ([]result, error) {
	q := url.Values{
		"query": {word},
		"from":  {c.From},
		"to":    {c.To},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("tatoeba: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tatoeba: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tatoeba: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("tatoeba: decode json: %w", err)
	}
	return body.Results, nil
}

// flattenTranslations accepts either a list of pair objects or a list of
// lists of pair objects and returns the pairs in order. Elements of any
// other shape are ignored.
func flattenTranslations(raw json.RawMessage) []pair {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []pair
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '[':
			var group []pair
			if err := json.Unmarshal(item, &group); err == nil {
				out = append(out, group...)
			}
		case '{':
			var p pair
			if err := json.Unmarshal(item, &p); err == nil {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
