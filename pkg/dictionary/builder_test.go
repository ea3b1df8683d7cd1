package dictionary

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// memFile is an in-memory io.WriterAt.
type memFile struct {
	buf []byte
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[off:], p)
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) WriteAt(p []byte, off int64) (int, error) {
	return 0, errors.New("disk full")
}

// discardWriter accepts writes at any offset without storing them.
type discardWriter struct{}

func (discardWriter) WriteAt(p []byte, off int64) (int, error) {
	return len(p), nil
}

func writeWordList(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildLayout(t *testing.T) {
	var out memFile
	stats, err := Build([]WordValue{
		{Word: "ab", Value: "X"},
		{Word: "b", Value: "Z"},
		{Word: "abc", Value: "Y"},
	}, &out)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{
		0x00, 0x02, 0x00, 0x01, 0x00, 0x0A,
		// root level
		'a', ' ', ' ', 0x00, 0x01, 0x00, 0x00, 0x00, 0x1A, ' ',
		'b', ' ', ' ', 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 'Z',
		// children of "a"
		'b', ' ', ' ', 0x00, 0x01, 0x00, 0x00, 0x00, 0x24, 'X',
		// children of "ab"
		'c', ' ', ' ', 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 'Y',
	}
	if !bytes.Equal(out.buf, expected) {
		t.Errorf("layout mismatch\n got: % x\nwant: % x", out.buf, expected)
	}
	if stats.Words != 3 || stats.Records != 4 || stats.Bytes != int64(len(expected)) || stats.ValueWidth != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBuildDepthFirstGroups(t *testing.T) {
	// every child group must start where its parent's offset points
	var out memFile
	_, err := Build([]WordValue{
		{Word: "cat", Value: "1"},
		{Word: "car", Value: "2"},
		{Word: "dog", Value: "3"},
		{Word: "do", Value: "4"},
	}, &out)
	if err != nil {
		t.Fatal(err)
	}

	var h Header
	if err := h.UnmarshalBinary(out.buf); err != nil {
		t.Fatal(err)
	}
	width := int(h.RecordWidth)
	var visit func(off, count int, prefix string)
	words := map[string]string{}
	visit = func(off, count int, prefix string) {
		for i := 0; i < count; i++ {
			rec := out.buf[off+i*width : off+(i+1)*width]
			e := decodeEntry(rec)
			word := prefix + string(decodeLabel(rec))
			if e.Terminal() {
				words[word] = e.Value
			}
			if e.HasChildren() {
				visit(int(e.ChildOffset), int(e.ChildCount), word)
			}
		}
	}
	visit(HeaderSize, int(h.RootChildCount), "")

	want := map[string]string{"cat": "1", "car": "2", "dog": "3", "do": "4"}
	if len(words) != len(want) {
		t.Fatalf("decoded %v, want %v", words, want)
	}
	for w, v := range want {
		if words[w] != v {
			t.Errorf("word %q = %q, want %q", w, words[w], v)
		}
	}
}

func TestBuildDuplicateLastWins(t *testing.T) {
	var out memFile
	stats, err := Build([]WordValue{
		{Word: "bad", Value: "first"},
		{Word: "bad", Value: "second"},
	}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Words != 1 {
		t.Errorf("Words = %d, want 1", stats.Words)
	}
	if !bytes.Contains(out.buf, []byte("second")) || bytes.Contains(out.buf, []byte("first")) {
		t.Errorf("last value should win: % x", out.buf)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := []WordValue{{"南京", "1"}, {"长江", "2"}, {"南京市", "3"}, {"bad", "4"}}
	b := []WordValue{{"bad", "4"}, {"南京市", "3"}, {"长江", "2"}, {"南京", "1"}}

	var outA, outB memFile
	if _, err := Build(a, &outA); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(b, &outB); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(outA.buf, outB.buf) {
		t.Error("input order changed the output")
	}
}

func TestBuildEmpty(t *testing.T) {
	var out memFile
	stats, err := Build(nil, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.buf, []byte{0, 0, 0, 0, 0, 9}) {
		t.Errorf("empty dictionary = % x", out.buf)
	}
	if stats.Bytes != HeaderSize {
		t.Errorf("Bytes = %d", stats.Bytes)
	}
}

func TestBuildWriteError(t *testing.T) {
	_, err := Build([]WordValue{{"a", "1"}}, failingWriter{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestBuildValueTooWide(t *testing.T) {
	var out memFile
	_, err := Build([]WordValue{{"a", strings.Repeat("v", maxU16)}}, &out)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestMake(t *testing.T) {
	dir := t.TempDir()
	input := writeWordList(t, dir, "bad\tX", "worse\tYY", "# comment without tab")
	output := filepath.Join(dir, "dict.bin")

	stats, err := Make(input, output)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Words != 2 || stats.ValueWidth != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if err := ValidateFileFormat(output, FormatTrie); err != nil {
		t.Errorf("built file does not validate: %v", err)
	}
}

func TestMakeRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeWordList(t, dir, "bad\tX", "broken line")
	output := filepath.Join(dir, "dict.bin")

	_, err := Make(input, output, WithStrict(true))
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("output should not exist after failed build, stat err: %v", statErr)
	}

	if _, err := Make(filepath.Join(dir, "missing.txt"), output); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestBuildGroupTooLarge(t *testing.T) {
	// root -> "a" -> 65536 siblings, all pointing at one shared leaf
	a := newArena()
	a.nodes = append(a.nodes, buildNode{}, buildNode{value: "v"})
	a.nodes[0].children = []buildEdge{{label: "a", child: 1}}
	edges := make([]buildEdge, maxU16+1)
	for i := range edges {
		edges[i] = buildEdge{label: "b", child: 2}
	}
	a.nodes[1].children = edges
	a.maxValue = 1

	_, err := a.serialize(&memFile{})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestBuildOffsetTooLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-gigabyte build in short mode")
	}
	// widest records; the group under "x" pushes the end of file past u32,
	// so the child offset of "y" cannot be encoded
	a := newArena()
	a.nodes = append(a.nodes, buildNode{}, buildNode{}, buildNode{})
	a.nodes[0].children = []buildEdge{{label: "x", child: 1}, {label: "y", child: 2}}
	edges := make([]buildEdge, maxU16)
	for i := range edges {
		edges[i] = buildEdge{label: "z", child: 3}
	}
	a.nodes[1].children = edges
	a.nodes[2].children = []buildEdge{{label: "z", child: 3}}
	a.maxValue = maxU16 - recordFixed

	_, err := a.serialize(discardWriter{})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
