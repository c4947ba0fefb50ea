package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

func (s *Shell) lookup(ctx context.Context) error {
	// An empty word is looked up and logged like any other.
	word, ok := s.prompt("Enter Japanese word: ")
	if !ok {
		return errQuit
	}

	result := s.Dictionary.Lookup(ctx, word)
	if result.Word == "" {
		result.Word = word
	}
	if result.Word != word {
		fmt.Fprintf(s.out, "Found as: %s\n", result.Word)
	}
	if result.Reading != "" {
		fmt.Fprintf(s.out, "Reading: %s\n", result.Reading)
	}
	fmt.Fprintf(s.out, "Meaning: %s\n", result.Meaning)
	fmt.Fprintf(s.out, "Tags: %s\n", formatTags(result.AutoTags))

	var sentences []string
	if s.Sentences != nil {
		sentences = s.Sentences.Examples(ctx, result.Word, s.MaxExamples)
	}
	if len(sentences) == 0 {
		fmt.Fprintln(s.out, "No example sentences found.")
	} else {
		fmt.Fprintln(s.out, "Example sentences:")
		for i, sentence := range sentences {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, sentence)
		}
	}

	extra, ok := s.prompt("Add tags (comma-separated, optional): ")
	if !ok {
		return errQuit
	}
	tags := wordlog.MergeTags(result.AutoTags, wordlog.ParseTags(extra))
	fmt.Fprintf(s.out, "Tags: %s\n", formatTags(tags))

	sentences, err := s.annotate(ctx, result.Word, sentences)
	if err != nil {
		return err
	}

	entry, err := s.Log.Log(ctx, result, sentences, tags)
	if err != nil {
		return fmt.Errorf("log %s: %w", result.Word, err)
	}
	fmt.Fprintf(s.out, "Logged: %s - %s\n", entry.Word, entry.Meaning)
	return nil
}

// annotate runs the lookup sub-menu until the entry is saved and returns
// the sentences to log.
func (s *Shell) annotate(ctx context.Context, word string, sentences []string) ([]string, error) {
	cmds := []command{
		{"Add a custom sentence", func(context.Context) error {
			text, ok := s.prompt("Enter sentence: ")
			if !ok {
				return errQuit
			}
			if text == "" {
				fmt.Fprintln(s.out, "No sentence entered.")
				return nil
			}
			sentences = append(sentences, text)
			fmt.Fprintln(s.out, "Sentence added.")
			return nil
		}},
	}
	if s.Reference != nil {
		cmds = append(cmds, command{"Open reference in browser", func(context.Context) error {
			s.openReference(word)
			return nil
		}})
		if s.Preview {
			cmds = append(cmds, command{"Preview reference here", func(ctx context.Context) error {
				s.previewReference(ctx, word)
				return nil
			}})
		}
	}
	save := len(cmds) + 1

	for {
		fmt.Fprintln(s.out)
		for i, c := range cmds {
			fmt.Fprintf(s.out, "  %d. %s\n", i+1, c.label)
		}
		fmt.Fprintf(s.out, "  %d. Save entry\n", save)

		line, ok := s.prompt("Choose an option: ")
		if !ok {
			return nil, errQuit
		}
		n, ok := choice(line, save)
		if !ok {
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
			continue
		}
		if n == save {
			return sentences, nil
		}
		if err := cmds[n-1].run(ctx); err != nil {
			return nil, err
		}
	}
}

func (s *Shell) openReference(word string) {
	fmt.Fprintf(s.out, "Opening %s\n", s.Reference.URL(word))
	if err := s.Reference.Open(word); err != nil {
		fmt.Fprintf(s.out, "Could not open browser: %v\n", err)
	}
}

func (s *Shell) previewReference(ctx context.Context, word string) {
	page, err := s.Reference.Preview(ctx, word)
	if err != nil {
		fmt.Fprintf(s.out, "Could not load reference: %v\n", err)
		return
	}
	if page.Title != "" {
		fmt.Fprintln(s.out, s.heading.Render(page.Title))
	}
	fmt.Fprintln(s.out, page.URL)
	if page.Excerpt == "" {
		fmt.Fprintln(s.out, "(no readable text)")
		return
	}
	fmt.Fprintln(s.out, page.Excerpt)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}
