// Package logbook records lookups in both the SQLite table and the JSON
// file, keeping the two in step.
package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomscullin/dictionary-logger/pkg/db"
	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Logbook writes every entry to the relational store and the JSON file.
// The relational store is the source of truth for reads.
type Logbook struct {
	Store *db.Store
	File  *JSONFile
	// Now is the clock used to date entries. nil means time.Now.
	Now func() time.Time
}

// New creates a Logbook over an initialized database and a JSON file path.
func New(conn *sql.DB, jsonPath string) *Logbook {
	return &Logbook{
		Store: db.NewStore(conn),
		File:  &JSONFile{Path: jsonPath},
	}
}

// Log creates an entry for the lookup stamped with the current date and time
// and appends it.
func (l *Logbook) Log(ctx context.Context, r wordlog.LookupResult, sentences, tags []string) (wordlog.Entry, error) {
	now := l.now()
	e := wordlog.Entry{
		Date:      now.Format(dateLayout),
		Time:      now.Format(timeLayout),
		Word:      r.Word,
		Meaning:   r.Meaning,
		Sentences: append([]string{}, sentences...),
		Tags:      wordlog.MergeTags(tags),
	}
	if err := l.Append(ctx, e); err != nil {
		return wordlog.Entry{}, err
	}
	return e, nil
}

// Append writes e to both representations or to neither. The row is
// inserted inside a transaction; the JSON file is written before commit and
// restored if the commit fails.
func (l *Logbook) Append(ctx context.Context, e wordlog.Entry) error {
	tx, err := l.Store.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin log tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	if _, err := db.InsertEntry(ctx, tx, e); err != nil {
		return err
	}

	snap, err := l.File.snapshot()
	if err != nil {
		return err
	}
	if err := l.File.Append(ctx, e); err != nil {
		return fmt.Errorf("write json log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if rerr := l.File.restore(snap); rerr != nil {
			return fmt.Errorf("commit entry: %v (restoring %s also failed: %w)", err, l.File.Path, rerr)
		}
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

// Today returns the entries logged today.
func (l *Logbook) Today(ctx context.Context) ([]wordlog.Entry, error) {
	return l.EntriesOn(ctx, l.now().Format(dateLayout))
}

// TodayDate is today's date as used for keys.
func (l *Logbook) TodayDate() string {
	return l.now().Format(dateLayout)
}

// EntriesOn implements wordlog.Log.
func (l *Logbook) EntriesOn(ctx context.Context, date string) ([]wordlog.Entry, error) {
	return l.Store.EntriesOn(ctx, date)
}

// All implements wordlog.Log.
func (l *Logbook) All(ctx context.Context) ([]wordlog.Entry, error) {
	return l.Store.All(ctx)
}

type entryKey struct {
	date, time, word string
}

func keyOf(e wordlog.Entry) entryKey {
	return entryKey{e.Date, e.Time, e.Word}
}

// Import copies entries found only in the JSON file into the relational
// store, in one transaction. Logs written before the table existed become
// readable this way. It returns the number of rows added; a second run adds
// nothing.
func (l *Logbook) Import(ctx context.Context) (int, error) {
	fromFile, err := l.File.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("read json log: %w", err)
	}
	if len(fromFile) == 0 {
		return 0, nil
	}

	tx, err := l.Store.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	existing, err := db.AllEntries(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("read words: %w", err)
	}
	// Counted so that the same word looked up twice in one minute is kept twice.
	have := make(map[entryKey]int, len(existing))
	for _, e := range existing {
		have[keyOf(e)]++
	}

	added := 0
	for _, e := range fromFile {
		k := keyOf(e)
		if have[k] > 0 {
			have[k]--
			continue
		}
		if _, err := db.InsertEntry(ctx, tx, e); err != nil {
			return 0, err
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return added, nil
}

func (l *Logbook) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
