package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const selectEntries = `SELECT date, time, word, meaning, sentences, tags FROM words`

// InsertEntry appends an entry to the words table and returns its id.
func InsertEntry(ctx context.Context, db DBExecutor, e wordlog.Entry) (int64, error) {
	if strings.TrimSpace(e.Date) == "" {
		return 0, fmt.Errorf("entry date must be non-empty")
	}
	sentences := e.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	encoded, err := json.Marshal(sentences)
	if err != nil {
		return 0, fmt.Errorf("encode sentences: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO words (date, word, meaning, sentences, tags, time) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Date, e.Word, e.Meaning, string(encoded), wordlog.JoinTags(e.Tags), e.Time,
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry %s: %w", e.Word, err)
	}
	return res.LastInsertId()
}

// EntriesOn returns the entries logged on date in insertion order.
func EntriesOn(ctx context.Context, db DBExecutor, date string) ([]wordlog.Entry, error) {
	return queryEntries(ctx, db, selectEntries+` WHERE date = ? ORDER BY id`, date)
}

// AllEntries returns every entry ordered by date, then insertion order.
func AllEntries(ctx context.Context, db DBExecutor) ([]wordlog.Entry, error) {
	return queryEntries(ctx, db, selectEntries+` ORDER BY date, id`)
}

func queryEntries(ctx context.Context, db DBExecutor, query string, args ...interface{}) ([]wordlog.Entry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []wordlog.Entry{}
	for rows.Next() {
		var e wordlog.Entry
		var tm, sentences, tags sql.NullString
		if err := rows.Scan(&e.Date, &tm, &e.Word, &e.Meaning, &sentences, &tags); err != nil {
			return nil, err
		}
		e.Time = tm.String
		e.Sentences = decodeSentences(sentences.String)
		e.Tags = wordlog.SplitTags(tags.String)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeSentences reads the stored JSON list. Rows written by older versions
// may hold a bare sentence instead.
func decodeSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{s}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Store reads the relational log. Writes go through InsertEntry so callers
// can keep them inside their own transaction.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an initialized connection.
func NewStore(conn *sql.DB) *Store {
	return &Store{DB: conn}
}

// EntriesOn returns the entries logged on date in insertion order.
func (s *Store) EntriesOn(ctx context.Context, date string) ([]wordlog.Entry, error) {
	return EntriesOn(ctx, s.DB, date)
}

// All returns every entry ordered by date, then insertion order.
func (s *Store) All(ctx context.Context) ([]wordlog.Entry, error) {
	return AllEntries(ctx, s.DB)
}
