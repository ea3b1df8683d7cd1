package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/wordguard/pkg/filter"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

type fakeMatcher struct {
	hits filter.Result
	err  error
}

func (f fakeMatcher) Search(string) (filter.Result, error) {
	return f.hits, f.err
}

func (f fakeMatcher) Replace(text string, sub filter.Substitution) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for w, m := range f.hits {
		text = strings.ReplaceAll(text, w, sub.Apply(w, m.Value))
	}
	return text, nil
}

func TestInputHandler(t *testing.T) {
	m := fakeMatcher{hits: filter.Result{"bad": {Value: "insult", Count: 2}}}
	var out bytes.Buffer
	h := NewInputHandler(m, "***", false, strings.NewReader("bad and bad\n\nlast line without newline"), &out)

	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Found 1 words", "bad", "x2", "insult", "=> *** and ***"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if h.requestCount != 2 {
		t.Errorf("requestCount = %d, want 2", h.requestCount)
	}
}

func TestInputHandlerUseValue(t *testing.T) {
	m := fakeMatcher{hits: filter.Result{"bad": {Value: "insult", Count: 1}}}
	var out bytes.Buffer
	h := NewInputHandler(m, "***", true, strings.NewReader("so bad\n"), &out)

	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "=> so insult") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestInputHandlerNoHits(t *testing.T) {
	var out bytes.Buffer
	h := NewInputHandler(fakeMatcher{hits: filter.Result{}}, "*", false, strings.NewReader("clean\n"), &out)
	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "no dictionary words found") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestInputHandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := NewInputHandler(fakeMatcher{err: boom}, "*", false, strings.NewReader("text\n"), &bytes.Buffer{})
	if err := h.Start(); !errors.Is(err, boom) {
		t.Errorf("Start error = %v, want %v", err, boom)
	}
}
