package logbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

// JSONFile keeps the whole log in one JSON document keyed by date.
type JSONFile struct {
	Path string
}

// jsonEntry is the on-disk shape of an entry. Sentence is only ever read:
// logs written by the first version of the tool held a single sentence.
type jsonEntry struct {
	Word      string   `json:"word"`
	Meaning   string   `json:"meaning"`
	Sentences []string `json:"sentences"`
	Sentence  string   `json:"sentence,omitempty"`
	Tags      []string `json:"tags"`
	Time      string   `json:"time"`
}

type document map[string][]jsonEntry

// Append implements wordlog.Log.
func (f *JSONFile) Append(_ context.Context, e wordlog.Entry) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[e.Date] = append(doc[e.Date], toJSON(e))
	return f.save(doc)
}

// EntriesOn implements wordlog.Log.
func (f *JSONFile) EntriesOn(_ context.Context, date string) ([]wordlog.Entry, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	out := []wordlog.Entry{}
	for _, je := range doc[date] {
		out = append(out, fromJSON(date, je))
	}
	return out, nil
}

// All implements wordlog.Log.
func (f *JSONFile) All(_ context.Context) ([]wordlog.Entry, error) {
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(doc))
	for d := range doc {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := []wordlog.Entry{}
	for _, d := range dates {
		for _, je := range doc[d] {
			out = append(out, fromJSON(d, je))
		}
	}
	return out, nil
}

// load reads the document. A missing file is an empty log; a corrupted one
// is an error.
func (f *JSONFile) load() (document, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	doc := document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	for _, entries := range doc {
		for i := range entries {
			entries[i] = upgrade(entries[i])
		}
	}
	return doc, nil
}

// upgrade moves a legacy single sentence into the sentences list and fills
// missing lists, so that the next save writes the current shape.
func upgrade(je jsonEntry) jsonEntry {
	if len(je.Sentences) == 0 && je.Sentence != "" {
		je.Sentences = []string{je.Sentence}
	}
	je.Sentence = ""
	if je.Sentences == nil {
		je.Sentences = []string{}
	}
	je.Tags = wordlog.MergeTags(je.Tags)
	return je
}

// save writes the document with 4-space indentation, keeping non-ASCII text
// as is. The file is replaced atomically.
func (f *JSONFile) save(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	return writeFileAtomic(f.Path, buf.Bytes())
}

// snapshot captures the current file so a failed write can be undone.
type snapshot struct {
	data    []byte
	existed bool
}

func (f *JSONFile) snapshot() (snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, fmt.Errorf("snapshot %s: %w", f.Path, err)
	}
	return snapshot{data: data, existed: true}, nil
}

func (f *JSONFile) restore(s snapshot) error {
	if !s.existed {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return writeFileAtomic(f.Path, s.data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func toJSON(e wordlog.Entry) jsonEntry {
	je := jsonEntry{
		Word:      e.Word,
		Meaning:   e.Meaning,
		Sentences: e.Sentences,
		Tags:      e.Tags,
		Time:      e.Time,
	}
	if je.Sentences == nil {
		je.Sentences = []string{}
	}
	if je.Tags == nil {
		je.Tags = []string{}
	}
	return je
}

// fromJSON expects an entry already passed through upgrade.
func fromJSON(date string, je jsonEntry) wordlog.Entry {
	return wordlog.Entry{
		Date:      date,
		Time:      je.Time,
		Word:      je.Word,
		Meaning:   je.Meaning,
		Sentences: je.Sentences,
		Tags:      je.Tags,
	}
}
