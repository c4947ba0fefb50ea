// Package reference opens a word's page on an external dictionary site, in
// the browser or as a plain-text preview in the terminal.
package reference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/pkg/browser"
)

// DefaultURLTemplate is the search page opened for a word.
const DefaultURLTemplate = "https://jisho.org/search/%s"

const (
	defaultExcerptRunes = 600
	maxBodySize         = 5 * 1024 * 1024
)

// Reference builds and opens reference URLs.
type Reference struct {
	// URLTemplate contains a single %s replaced by the path-escaped word.
	URLTemplate string
	HTTPClient  *http.Client
	// OpenURL launches the browser. nil means the system browser.
	OpenURL func(url string) error
	// ExcerptRunes bounds the preview text. 0 means a sensible default.
	ExcerptRunes int
}

// New creates a Reference for template (DefaultURLTemplate if empty).
func New(template string) *Reference {
	if template == "" {
		template = DefaultURLTemplate
	}
	return &Reference{
		URLTemplate: template,
		HTTPClient:  http.DefaultClient,
	}
}

// URL returns the reference page for word.
func (r *Reference) URL(word string) string {
	return fmt.Sprintf(r.URLTemplate, url.PathEscape(word))
}

// Open shows the reference page for word in the browser.
func (r *Reference) Open(word string) error {
	open := r.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	return open(r.URL(word))
}

// Page is the readable part of a reference page.
type Page struct {
	URL     string
	Title   string
	Excerpt string
}

// Preview fetches the reference page and extracts its main text.
func (r *Reference) Preview(ctx context.Context, word string) (Page, error) {
	pageURL := r.URL(word)
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "dictionary-logger")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")

	hc := r.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", pageURL, err)
	}

	// Furigana would otherwise be glued to its kanji ("漢字かんじ").
	body = SanitizeRuby(body)

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return Page{}, fmt.Errorf("extract %s: %w", pageURL, err)
	}
	text := collapseSpace(article.TextContent)
	if text == "" {
		return Page{}, fmt.Errorf("extract %s: no readable content", pageURL)
	}

	limit := r.ExcerptRunes
	if limit <= 0 {
		limit = defaultExcerptRunes
	}
	return Page{
		URL:     pageURL,
		Title:   strings.TrimSpace(article.Title),
		Excerpt: truncate(text, limit),
	}, nil
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT    = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP    = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
	reSpace = regexp.MustCompile(`\s+`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML content.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

func collapseSpace(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
