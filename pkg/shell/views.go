package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomscullin/dictionary-logger/pkg/export"
	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

func (s *Shell) viewToday(ctx context.Context) error {
	today := s.Log.TodayDate()
	entries, err := s.Log.Today(ctx)
	if err != nil {
		return fmt.Errorf("read today's log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No words logged today.")
		return nil
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.heading.Render(fmt.Sprintf("Today's Log (%s):", today)))
	for _, e := range entries {
		s.printEntry(e)
	}
	return nil
}

func (s *Shell) viewAll(ctx context.Context) error {
	entries, err := s.Log.All(ctx)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "The log is empty.")
		return nil
	}

	date := ""
	for _, e := range entries {
		if e.Date != date {
			date = e.Date
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, s.heading.Render(date+":"))
		}
		s.printEntry(e)
	}
	return nil
}

func (s *Shell) printEntry(e wordlog.Entry) {
	fmt.Fprintf(s.out, "- %s: %s (%s)\n", e.Word, e.Meaning, e.Time)
	if len(e.Tags) > 0 {
		fmt.Fprintf(s.out, "    tags: %s\n", strings.Join(e.Tags, ", "))
	}
	for _, sentence := range e.Sentences {
		fmt.Fprintf(s.out, "    %s\n", sentence)
	}
}

func (s *Shell) exportLog(ctx context.Context) error {
	path, ok := s.prompt(fmt.Sprintf("Export path [%s]: ", s.ExportPath))
	if !ok {
		return errQuit
	}
	if path == "" {
		path = s.ExportPath
	}

	n, err := s.export()(ctx, s.Log, path)
	if errors.Is(err, export.ErrNoEntries) {
		fmt.Fprintln(s.out, "Nothing to export.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(s.out, "Exported %d entries to %s\n", n, path)
	return nil
}

func (s *Shell) searchEnglish(ctx context.Context) error {
	keyword, ok := s.prompt("Enter English word: ")
	if !ok {
		return errQuit
	}
	if keyword == "" {
		fmt.Fprintln(s.out, "No word entered.")
		return nil
	}
	s.printSearch(ctx, keyword)
	return nil
}

func (s *Shell) searchTag(ctx context.Context) error {
	raw, ok := s.prompt("Enter tag or JLPT level (e.g. common, n5): ")
	if !ok {
		return errQuit
	}
	keyword := tagKeyword(raw)
	if keyword == "" {
		fmt.Fprintln(s.out, "No tag entered.")
		return nil
	}
	s.printSearch(ctx, keyword)
	return nil
}

// tagKeyword turns user input into a Jisho tag search such as "#jlpt-n5".
func tagKeyword(raw string) string {
	tag := wordlog.NormalizeTag(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if tag == "" {
		return ""
	}
	if len(tag) == 2 && tag[0] == 'n' && tag[1] >= '1' && tag[1] <= '5' {
		tag = "jlpt-" + tag
	}
	if tag == wordlog.CommonWordTag {
		tag = "common"
	}
	return "#" + tag
}

func (s *Shell) printSearch(ctx context.Context, keyword string) {
	matches, err := s.Searcher.Search(ctx, keyword, s.SearchLimit)
	if err != nil || len(matches) == 0 {
		fmt.Fprintln(s.out, "No results found.")
		return
	}
	for i, m := range matches {
		fmt.Fprintf(s.out, "%d. %s", i+1, m.Word)
		if m.Reading != "" && m.Reading != m.Word {
			fmt.Fprintf(s.out, " (%s)", m.Reading)
		}
		fmt.Fprintf(s.out, ": %s", m.Meanings)
		var labels []string
		if m.Common {
			labels = append(labels, "common")
		}
		labels = append(labels, m.JLPT...)
		if len(labels) > 0 {
			fmt.Fprintf(s.out, " [%s]", strings.Join(labels, ", "))
		}
		fmt.Fprintln(s.out)
	}
}
