package wordguard

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/filter"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func makeDict(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(input, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "words.bin")
	if err := Make(input, output); err != nil {
		t.Fatal(err)
	}
	return output
}

func TestEndToEnd(t *testing.T) {
	path := makeDict(t,
		"阿扁\tpolitics",
		"推翻\tpolitics",
		"成人电影\tadult",
		"成人\tadult",
	)
	dict, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	text := "阿扁推翻爱液横流,成人电影"
	hits, err := dict.Search(text)
	if err != nil {
		t.Fatal(err)
	}
	expected := filter.Result{
		"阿扁":   {Value: "politics", Count: 1},
		"推翻":   {Value: "politics", Count: 1},
		"成人":   {Value: "adult", Count: 1},
		"成人电影": {Value: "adult", Count: 1},
	}
	if !reflect.DeepEqual(hits, expected) {
		t.Errorf("Search = %v, want %v", hits, expected)
	}

	clean, err := dict.Replace(text, filter.Literal("**"))
	if err != nil {
		t.Fatal(err)
	}
	if clean != "****爱液横流,**" {
		t.Errorf("Replace = %q", clean)
	}
}

func TestOpenWithFilter(t *testing.T) {
	path := makeDict(t, "a.b\tdotted")
	dict, err := OpenWithFilter(path,
		[]dictionary.OpenOption{dictionary.WithMmap(true), dictionary.WithCache(32)},
		[]filter.Option{filter.WithStops(" ")})
	if err != nil {
		t.Fatal(err)
	}
	defer dict.Close()

	got, err := dict.Replace("x a.b y", filter.ValueOf())
	if err != nil {
		t.Fatal(err)
	}
	if got != "x dotted y" {
		t.Errorf("Replace = %q", got)
	}
	if dict.Dict().Header().RootChildCount != 1 {
		t.Errorf("unexpected header %+v", dict.Dict().Header())
	}
}

func TestDeterministicAcrossInputOrder(t *testing.T) {
	lines := []string{"ab\tX", "abc\tY", "南京\tN", "bad\tB"}
	reversed := []string{lines[3], lines[2], lines[1], lines[0]}

	a, err := os.ReadFile(makeDict(t, lines...))
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(makeDict(t, reversed...))
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("dictionaries differ for the same word list in another order")
	}
}
