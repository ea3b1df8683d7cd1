// Package cli reads text lines from stdin and shows what the dictionary finds in them.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/wordguard/pkg/filter"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Matcher is the part of a dictionary the CLI needs.
type Matcher interface {
	Search(text string) (filter.Result, error)
	Replace(text string, sub filter.Substitution) (string, error)
}

var wordStyle = lipgloss.NewStyle().Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})

// InputHandler runs Search and Replace on each line it reads.
type InputHandler struct {
	matcher      Matcher
	sub          filter.Substitution
	in           io.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler creates a handler that replaces hits with replacement,
// or with their dictionary values when useValue is set.
func NewInputHandler(m Matcher, replacement string, useValue bool, in io.Reader, out io.Writer) *InputHandler {
	sub := filter.Literal(replacement)
	if useValue {
		sub = filter.ValueOf()
	}
	return &InputHandler{
		matcher: m,
		sub:     sub,
		in:      in,
		out: log.NewWithOptions(out, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		}),
	}
}

// Start loops until the input ends. EOF is not an error.
func (h *InputHandler) Start() error {
	h.out.Print("wordguard CLI")
	h.out.Print("type some text and press Enter to check it (Ctrl+D to exit):")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if text := strings.TrimRight(line, "\r\n"); text != "" {
			if hErr := h.handleInput(text); hErr != nil {
				return hErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput prints every hit with its count and value, then the replaced text.
func (h *InputHandler) handleInput(text string) error {
	h.requestCount++
	start := time.Now()

	res, err := h.matcher.Search(text)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	replaced, err := h.matcher.Replace(text, h.sub)
	if err != nil {
		return fmt.Errorf("replace failed: %w", err)
	}
	log.Debugf("Took [ %v ] for line %d", time.Since(start), h.requestCount)

	if len(res) == 0 {
		h.out.Print("no dictionary words found")
		return nil
	}

	h.out.Printf("Found %d words:", len(res))
	for i, w := range res.Words() {
		m := res[w]
		h.out.Printf("%2d. %s x%d (%s)", i+1, wordStyle.Render(w), m.Count, m.Value)
	}
	h.out.Printf("=> %s", replaced)
	return nil
}
