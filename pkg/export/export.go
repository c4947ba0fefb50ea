// Package export flattens the log into CSV or Excel files.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

// ErrNoEntries is returned when there is nothing to export. No file is
// written in that case.
var ErrNoEntries = errors.New("no entries to export")

// SheetName is the worksheet written by XLSX.
const SheetName = "Log"

// Header is the first row of every export.
var Header = []string{"Date", "Word", "Meaning", "Sentences", "Tags", "Time"}

// Source is anything that can list the whole log ordered by date.
type Source interface {
	All(ctx context.Context) ([]wordlog.Entry, error)
}

// Rows converts entries to export rows, header excluded.
func Rows(entries []wordlog.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date,
			e.Word,
			e.Meaning,
			strings.Join(e.Sentences, " | "),
			wordlog.JoinTags(e.Tags),
			e.Time,
		})
	}
	return rows
}

// ToFile exports to path, choosing the format from its extension: ".xlsx"
// writes a workbook, anything else CSV. It returns the number of entries.
func ToFile(ctx context.Context, src Source, path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSX(ctx, src, path)
	}
	return CSV(ctx, src, path)
}

// CSV writes the log to path, overwriting any existing file.
func CSV(ctx context.Context, src Source, path string) (int, error) {
	rows, err := load(ctx, src)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("write rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return len(rows), nil
}

// XLSX writes the log to an Excel workbook with a single sheet.
func XLSX(ctx context.Context, src Source, path string) (int, error) {
	rows, err := load(ctx, src)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, err
	}
	if err := setRow(f, 1, Header); err != nil {
		return 0, err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return 0, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return 0, err
	}
	if err := f.SetColWidth(SheetName, "C", "D", 40); err != nil {
		return 0, err
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}
	return len(rows), nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &row)
}

func load(ctx context.Context, src Source) ([][]string, error) {
	entries, err := src.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return Rows(entries), nil
}
