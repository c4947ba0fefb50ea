package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tomscullin/dictionary-logger/pkg/wordlog"
)

const testDictionary = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog", "lang": "eng"}, {"text": "Hund", "lang": "ger"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r", "vi"]}]
    },
    {
      "id": "3",
      "kanji": [{"text": "猫", "common": true}],
      "kana": [{"text": "ねこ", "common": true}],
      "sense": [{"gloss": [{"text": "cat"}], "partOfSpeech": ["n"]}, {"gloss": [{"text": "shamisen"}], "partOfSpeech": ["n", "col"]}]
    },
    {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": false}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    }
  ]
}
`

func loadTestIndex(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(testDictionary), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ix, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return ix
}

func TestIndexLookup(t *testing.T) {
	ix := loadTestIndex(t)
	ctx := context.Background()

	tests := []struct {
		word    string
		meaning string
		reading string
		tags    []string
	}{
		{"犬", "dog", "いぬ", []string{"common_word", "n"}},
		{"いぬ", "dog", "いぬ", []string{"common_word", "n"}},
		{"走る", "to run", "はしる", []string{"common_word", "v5r", "vi"}},
		{"猫", "cat", "ねこ", []string{"common_word", "n"}},
		{"テスト", "test", "テスト", []string{"n", "vs"}},
		{"てすと", "test", "テスト", []string{"n", "vs"}},
	}
	for _, tt := range tests {
		r := ix.Lookup(ctx, tt.word)
		if r.Meaning != tt.meaning || r.Reading != tt.reading || !reflect.DeepEqual(r.AutoTags, tt.tags) {
			t.Errorf("Lookup(%q) = %+v; want meaning %q reading %q tags %v", tt.word, r, tt.meaning, tt.reading, tt.tags)
		}
		if r.Word != tt.word {
			t.Errorf("Lookup(%q).Word = %q", tt.word, r.Word)
		}
	}
}

func TestIndexLookupNotFound(t *testing.T) {
	ix := loadTestIndex(t)
	for _, w := range []string{"未知", "", "  "} {
		r := ix.Lookup(context.Background(), w)
		if r.Meaning != wordlog.NotFoundMeaning || len(r.AutoTags) != 0 {
			t.Errorf("Lookup(%q) = %+v; want not found", w, r)
		}
	}
}

func TestIndexLookupPrefersLowestNumericID(t *testing.T) {
	ix := NewIndex([]JMdictEntry{
		{ID: "10", Kanji: []JMdictElement{{Text: "上手", Common: true}}, Sense: []JMdictSense{{Gloss: []JMdictGloss{{Text: "upper part"}}}}},
		{ID: "9", Kanji: []JMdictElement{{Text: "上手", Common: true}}, Sense: []JMdictSense{{Gloss: []JMdictGloss{{Text: "skillful"}}}}},
		{ID: "2", Kanji: []JMdictElement{{Text: "上手"}}, Sense: []JMdictSense{{Gloss: []JMdictGloss{{Text: "rare"}}}}},
	})
	if r := ix.Lookup(context.Background(), "上手"); r.Meaning != "skillful" {
		t.Fatalf("Lookup(上手).Meaning = %q; want %q", r.Meaning, "skillful")
	}
}

func TestIDLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"9", "10", true},
		{"10", "9", false},
		{"1000220", "999", false},
		{"5", "x", true},
		{"x", "5", false},
		{"a", "b", true},
	}
	for _, tt := range tests {
		if got := idLess(tt.a, tt.b); got != tt.want {
			t.Errorf("idLess(%q, %q) = %v; want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLoadJMdictSimplifiedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict.json")
	body := `[{"id": "9", "kanji": [{"text": "鳥"}], "kana": [{"text": "とり"}], "sense": [{"gloss": [{"text": "bird"}]}]}]`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "9" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoadJMdictSimplifiedInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := os.WriteFile(path, []byte(`"nope"`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadJMdictSimplified(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}
