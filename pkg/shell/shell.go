// Package shell is the interactive numbered menu of the word logger.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/width"

	"github.com/tomscullin/dictionary-logger/pkg/export"
	"github.com/tomscullin/dictionary-logger/pkg/jisho"
	"github.com/tomscullin/dictionary-logger/pkg/reference"
	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

const title = "--- Japanese Dictionary Logger ---"

// maxLine bounds a single line of input, pasted sentences included.
const maxLine = 1024 * 1024

// errQuit ends the menu loop. It is never returned from Run.
var errQuit = errors.New("quit")

// Logbook is the log the shell writes to and reads from.
type Logbook interface {
	wordlog.Log
	// Log stamps a lookup with the current date and time and appends it.
	Log(ctx context.Context, r wordlog.LookupResult, sentences, tags []string) (wordlog.Entry, error)
	Today(ctx context.Context) ([]wordlog.Entry, error)
	TodayDate() string
}

// Reference opens or previews a word's page on an external site.
type Reference interface {
	URL(word string) string
	Open(word string) error
	Preview(ctx context.Context, word string) (reference.Page, error)
}

// Searcher runs free-form dictionary searches.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]jisho.Match, error)
}

// ExportFunc writes the log to path and reports how many entries it wrote.
type ExportFunc func(ctx context.Context, src export.Source, path string) (int, error)

// Shell reads menu choices from In and writes everything to Out.
type Shell struct {
	Dictionary wordlog.Dictionary
	Sentences  wordlog.SentenceSource
	Log        Logbook
	// Reference is optional. nil hides the reference sub-menu entries.
	Reference Reference
	// Searcher backs the search commands, shown only when Search is set.
	Searcher Searcher
	// Export defaults to export.ToFile.
	Export ExportFunc

	MaxExamples int
	ExportPath  string
	Search      bool
	SearchLimit int
	Preview     bool

	in      *bufio.Scanner
	out     io.Writer
	heading lipgloss.Style
}

// New creates a Shell over the given input and output.
func New(in io.Reader, out io.Writer) *Shell {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Shell{
		MaxExamples: wordlog.DefaultMaxExamples,
		ExportPath:  "word_log.csv",
		SearchLimit: 5,
		in:          sc,
		out:         out,
		heading:     lipgloss.NewRenderer(out).NewStyle().Bold(true),
	}
}

type command struct {
	label string
	run   func(ctx context.Context) error
}

func (s *Shell) commands() []command {
	cmds := []command{
		{"Look up a word", s.lookup},
		{"View today's log", s.viewToday},
		{"View full log", s.viewAll},
		{"Export log", s.exportLog},
	}
	if s.Search && s.Searcher != nil {
		cmds = append(cmds,
			command{"Search English → Japanese", s.searchEnglish},
			command{"Search by tag / JLPT level", s.searchTag},
		)
	}
	return append(cmds, command{"Quit", func(context.Context) error { return errQuit }})
}

// Run shows the menu until the user quits or input ends. Storage and input
// errors end the loop and are returned.
func (s *Shell) Run(ctx context.Context) error {
	cmds := s.commands()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, s.heading.Render(title))
		for i, c := range cmds {
			fmt.Fprintf(s.out, "%d. %s\n", i+1, c.label)
		}

		line, ok := s.prompt("Choose an option: ")
		if !ok {
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		n, ok := choice(line, len(cmds))
		if !ok {
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
			continue
		}

		err := cmds[n-1].run(ctx)
		if errors.Is(err, errQuit) {
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// prompt prints label and reads one line. ok is false at end of input or on
// a read error, which s.in.Err reports.
func (s *Shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// choice parses a 1-based menu number. Full-width digits typed through an
// IME are accepted.
func choice(line string, n int) (int, bool) {
	v, err := strconv.Atoi(width.Narrow.String(strings.TrimSpace(line)))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}

func (s *Shell) export() ExportFunc {
	if s.Export != nil {
		return s.Export
	}
	return export.ToFile
}
