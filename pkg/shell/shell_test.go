package shell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomscullin/dictionary-logger/pkg/db"
	"github.com/tomscullin/dictionary-logger/pkg/export"
	"github.com/tomscullin/dictionary-logger/pkg/jisho"
	"github.com/tomscullin/dictionary-logger/pkg/logbook"
	"github.com/tomscullin/dictionary-logger/pkg/reference"
	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

type fakeDict map[string]wordlog.LookupResult

func (f fakeDict) Lookup(_ context.Context, word string) wordlog.LookupResult {
	if r, ok := f[word]; ok {
		return r
	}
	return wordlog.NotFound(word)
}

type fakeSentences map[string][]string

func (f fakeSentences) Examples(_ context.Context, word string, max int) []string {
	s := f[word]
	if len(s) > max {
		s = s[:max]
	}
	return append([]string{}, s...)
}

type fakeLog struct {
	today   string
	entries []wordlog.Entry
	err     error
}

func (f *fakeLog) Log(_ context.Context, r wordlog.LookupResult, sentences, tags []string) (wordlog.Entry, error) {
	if f.err != nil {
		return wordlog.Entry{}, f.err
	}
	e := wordlog.Entry{Date: f.today, Time: "09:30", Word: r.Word, Meaning: r.Meaning, Sentences: sentences, Tags: tags}
	return e, f.Append(context.Background(), e)
}

func (f *fakeLog) Append(_ context.Context, e wordlog.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLog) TodayDate() string { return f.today }

func (f *fakeLog) Today(ctx context.Context) ([]wordlog.Entry, error) {
	return f.EntriesOn(ctx, f.today)
}

func (f *fakeLog) EntriesOn(_ context.Context, date string) ([]wordlog.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []wordlog.Entry
	for _, e := range f.entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLog) All(_ context.Context) ([]wordlog.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeRef struct {
	opened  []string
	openErr error
	page    reference.Page
}

func (f *fakeRef) URL(word string) string { return "https://jisho.org/search/" + word }

func (f *fakeRef) Open(word string) error {
	f.opened = append(f.opened, word)
	return f.openErr
}

func (f *fakeRef) Preview(_ context.Context, word string) (reference.Page, error) {
	return f.page, nil
}

type fakeSearcher struct {
	keywords []string
	matches  []jisho.Match
	limit    int
}

func (f *fakeSearcher) Search(_ context.Context, keyword string, limit int) ([]jisho.Match, error) {
	f.keywords = append(f.keywords, keyword)
	f.limit = limit
	if len(f.matches) == 0 {
		return nil, errors.New("no data")
	}
	return f.matches, nil
}

var cat = wordlog.LookupResult{Word: "猫", Reading: "ねこ", Meaning: "cat", AutoTags: []string{"common_word", "noun"}}

func newTestShell(input string) (*Shell, *fakeLog, *bytes.Buffer) {
	out := &bytes.Buffer{}
	log := &fakeLog{today: "2025-04-01"}
	s := New(strings.NewReader(input), out)
	s.Dictionary = fakeDict{"猫": cat}
	s.Sentences = fakeSentences{}
	s.Log = log
	return s, log, out
}

func TestRunQuit(t *testing.T) {
	s, log, out := newTestShell("5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "--- Japanese Dictionary Logger ---")
	assert.Contains(t, out.String(), "1. Look up a word\n2. View today's log\n3. View full log\n4. Export log\n5. Quit\n")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.Empty(t, log.entries)
}

func TestRunEndOfInputQuits(t *testing.T) {
	s, _, out := newTestShell("")
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunInvalidChoiceReprompts(t *testing.T) {
	s, log, out := newTestShell("9\nabc\n0\n\n5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, 4, strings.Count(out.String(), "Invalid choice. Please try again."))
	assert.Equal(t, 5, strings.Count(out.String(), "Choose an option: "))
	assert.Empty(t, log.entries)
}

func TestRunAcceptsFullWidthDigits(t *testing.T) {
	s, _, out := newTestShell("２\n５\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "No words logged today.")
	assert.NotContains(t, out.String(), "Invalid choice")
}

func TestSearchCommandsShownWhenEnabled(t *testing.T) {
	s, _, out := newTestShell("7\n")
	s.Search = true
	s.Searcher = &fakeSearcher{}
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "5. Search English → Japanese\n6. Search by tag / JLPT level\n7. Quit\n")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestLookupMergesTags(t *testing.T) {
	s, log, out := newTestShell("1\n猫\nAnimal, Pet Store\n2\n5\n")
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, log.entries, 1)
	e := log.entries[0]
	assert.Equal(t, "猫", e.Word)
	assert.Equal(t, "cat", e.Meaning)
	assert.Equal(t, []string{"animal", "common_word", "noun", "pet_store"}, e.Tags)
	assert.Empty(t, e.Sentences)

	assert.Contains(t, out.String(), "Reading: ねこ\nMeaning: cat\nTags: common_word, noun\n")
	assert.Contains(t, out.String(), "No example sentences found.")
	assert.Contains(t, out.String(), "Logged: 猫 - cat")
}

func TestLookupWithSentencesAndCustomSentence(t *testing.T) {
	s, log, out := newTestShell("1\n猫\n\n1\n猫が好きです。 - I like cats.\n2\n5\n")
	s.Sentences = fakeSentences{"猫": {"猫がいる。 - There is a cat.", "猫を飼う。 - I keep a cat.", "三つ目 - third"}}
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, log.entries, 1)
	assert.Equal(t, []string{
		"猫がいる。 - There is a cat.",
		"猫を飼う。 - I keep a cat.",
		"猫が好きです。 - I like cats.",
	}, log.entries[0].Sentences)
	assert.Contains(t, out.String(), "  1. 猫がいる。 - There is a cat.\n  2. 猫を飼う。 - I keep a cat.\n")
	assert.Contains(t, out.String(), "Sentence added.")
}

func TestLookupNotFoundStillLogs(t *testing.T) {
	s, log, out := newTestShell("1\n未知\n\n2\n5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Meaning: Meaning not found.\nTags: none\n")
	require.Len(t, log.entries, 1)
	assert.Equal(t, wordlog.NotFoundMeaning, log.entries[0].Meaning)
	assert.Empty(t, log.entries[0].Tags)
}

func TestLookupEmptyWordIsLogged(t *testing.T) {
	s, log, out := newTestShell("1\n\n\n2\n5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Meaning: Meaning not found.")
	require.Len(t, log.entries, 1)
	assert.Equal(t, "", log.entries[0].Word)
	assert.Equal(t, wordlog.NotFoundMeaning, log.entries[0].Meaning)
}

func TestRunAcceptsLongLines(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	s, _, out := newTestShell(long + "\n5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Invalid choice. Please try again.")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunReportsOversizedInput(t *testing.T) {
	long := strings.Repeat("x", 2*maxLine)
	s, _, out := newTestShell(long + "\n5\n")

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestLookupReportsOversizedInput(t *testing.T) {
	s, log, _ := newTestShell("1\n猫\n" + strings.Repeat("t", 2*maxLine) + "\n")

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Empty(t, log.entries)
}

func TestLookupSubMenuInvalidChoice(t *testing.T) {
	s, log, out := newTestShell("1\n猫\n\n7\n2\n5\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Invalid choice. Please try again.")
	require.Len(t, log.entries, 1)
}

func TestLookupEndOfInputDoesNotLog(t *testing.T) {
	s, log, out := newTestShell("1\n猫\n\n")
	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, log.entries)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestLookupReference(t *testing.T) {
	ref := &fakeRef{page: reference.Page{URL: "https://jisho.org/search/猫", Title: "猫 - Jisho", Excerpt: "cat; feline"}}
	s, log, out := newTestShell("1\n猫\n\n2\n3\n4\n5\n")
	s.Reference = ref
	s.Preview = true
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "  1. Add a custom sentence\n  2. Open reference in browser\n  3. Preview reference here\n  4. Save entry\n")
	assert.Equal(t, []string{"猫"}, ref.opened)
	assert.Contains(t, out.String(), "Opening https://jisho.org/search/猫")
	assert.Contains(t, out.String(), "猫 - Jisho\nhttps://jisho.org/search/猫\ncat; feline\n")
	require.Len(t, log.entries, 1)
}

func TestLookupReferenceOpenFailureIsNotFatal(t *testing.T) {
	ref := &fakeRef{openErr: errors.New("no display")}
	s, log, out := newTestShell("1\n猫\n\n2\n3\n5\n")
	s.Reference = ref
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Could not open browser: no display")
	assert.NotContains(t, out.String(), "Preview reference here")
	require.Len(t, log.entries, 1)
}

func TestLookupStorageErrorIsReturned(t *testing.T) {
	s, log, _ := newTestShell("1\n猫\n\n2\n5\n")
	log.err = errors.New("disk full")

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestViewToday(t *testing.T) {
	s, log, out := newTestShell("2\n5\n")
	log.entries = []wordlog.Entry{
		{Date: "2025-03-31", Time: "08:00", Word: "犬", Meaning: "dog"},
		{Date: "2025-04-01", Time: "09:30", Word: "猫", Meaning: "cat", Tags: []string{"animal", "noun"}, Sentences: []string{"猫がいる。 - There is a cat."}},
	}
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Today's Log (2025-04-01):\n- 猫: cat (09:30)\n    tags: animal, noun\n    猫がいる。 - There is a cat.\n")
	assert.NotContains(t, out.String(), "犬")
}

func TestViewAll(t *testing.T) {
	s, log, out := newTestShell("3\n5\n")
	log.entries = []wordlog.Entry{
		{Date: "2025-03-31", Time: "08:00", Word: "犬", Meaning: "dog"},
		{Date: "2025-04-01", Time: "09:30", Word: "猫", Meaning: "cat"},
		{Date: "2025-04-01", Time: "10:00", Word: "鳥", Meaning: "bird"},
	}
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "2025-03-31:\n- 犬: dog (08:00)\n\n2025-04-01:\n- 猫: cat (09:30)\n- 鳥: bird (10:00)\n")
}

func TestViewAllEmpty(t *testing.T) {
	s, _, out := newTestShell("3\n5\n")
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "The log is empty.")
}

func TestExportNothing(t *testing.T) {
	dir := t.TempDir()
	s, _, out := newTestShell("4\n\n5\n")
	s.ExportPath = filepath.Join(dir, "log.csv")
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Nothing to export.")
	_, err := os.Stat(s.ExportPath)
	assert.True(t, os.IsNotExist(err))
}

func TestExportToGivenPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.csv")
	s, log, out := newTestShell("4\n" + path + "\n5\n")
	log.entries = []wordlog.Entry{
		{Date: "2025-04-01", Time: "09:30", Word: "猫", Meaning: "cat"},
		{Date: "2025-04-01", Time: "10:00", Word: "鳥", Meaning: "bird"},
	}
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Exported 2 entries to "+path)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportUsesInjectedFunc(t *testing.T) {
	var gotPath string
	s, _, out := newTestShell("4\n\n5\n")
	s.ExportPath = "default.xlsx"
	s.Export = func(_ context.Context, _ export.Source, path string) (int, error) {
		gotPath = path
		return 7, nil
	}
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, "default.xlsx", gotPath)
	assert.Contains(t, out.String(), "Export path [default.xlsx]: ")
	assert.Contains(t, out.String(), "Exported 7 entries to default.xlsx")
}

func TestSearchEnglish(t *testing.T) {
	searcher := &fakeSearcher{matches: []jisho.Match{
		{Word: "猫", Reading: "ねこ", Meanings: "cat", JLPT: []string{"jlpt-n5"}, Common: true},
		{Word: "ねこ", Reading: "ねこ", Meanings: "cat (kana)"},
	}}
	s, _, out := newTestShell("5\ncat\n7\n")
	s.Search = true
	s.SearchLimit = 3
	s.Searcher = searcher
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"cat"}, searcher.keywords)
	assert.Equal(t, 3, searcher.limit)
	assert.Contains(t, out.String(), "1. 猫 (ねこ): cat [common, jlpt-n5]\n2. ねこ: cat (kana)\n")
}

func TestSearchTag(t *testing.T) {
	searcher := &fakeSearcher{}
	s, _, out := newTestShell("6\nN5\n6\n#common\n7\n")
	s.Search = true
	s.Searcher = searcher
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"#jlpt-n5", "#common"}, searcher.keywords)
	assert.Equal(t, 2, strings.Count(out.String(), "No results found."))
}

func TestTagKeyword(t *testing.T) {
	tests := []struct{ in, want string }{
		{"n5", "#jlpt-n5"},
		{"N1", "#jlpt-n1"},
		{"jlpt-n3", "#jlpt-n3"},
		{"#common", "#common"},
		{"common_word", "#common"},
		{"Noun", "#noun"},
		{"n6", "#n6"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tagKeyword(tt.in), tt.in)
	}
}

func TestLookupLogsToBothStores(t *testing.T) {
	dir := t.TempDir()
	conn, err := db.Open(filepath.Join(dir, "word_log.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.InitDB(context.Background(), conn))

	book := logbook.New(conn, filepath.Join(dir, "word_log.json"))
	book.Now = func() time.Time { return time.Date(2025, 4, 1, 14, 3, 0, 0, time.Local) }

	out := &bytes.Buffer{}
	s := New(strings.NewReader("1\n猫\nanimal\n2\n5\n"), out)
	s.Dictionary = fakeDict{"猫": {Word: "猫", Meaning: "cat", AutoTags: []string{"common_word", "noun"}}}
	s.Sentences = fakeSentences{}
	s.Log = book
	require.NoError(t, s.Run(context.Background()))

	fromDB, err := book.EntriesOn(context.Background(), "2025-04-01")
	require.NoError(t, err)
	require.Len(t, fromDB, 1)
	assert.Equal(t, []string{"animal", "common_word", "noun"}, fromDB[0].Tags)
	assert.Empty(t, fromDB[0].Sentences)
	assert.Equal(t, "14:03", fromDB[0].Time)

	fromJSON, err := book.File.EntriesOn(context.Background(), "2025-04-01")
	require.NoError(t, err)
	require.Len(t, fromJSON, 1)
	assert.Equal(t, fromDB[0].Word, fromJSON[0].Word)
	assert.Equal(t, fromDB[0].Meaning, fromJSON[0].Meaning)
	assert.Equal(t, fromDB[0].Tags, fromJSON[0].Tags)
	assert.Empty(t, fromJSON[0].Sentences)

	assert.Contains(t, out.String(), "Logged: 猫 - cat")
}
