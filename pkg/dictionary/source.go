package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/wordguard/pkg/segment"
	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// WordValue is one line of a word list.
type WordValue struct {
	Word  string
	Value string
}

// SourceStats describes what ReadEntries did with its input.
type SourceStats struct {
	Lines   int
	Entries int
	Skipped int
}

type sourceOptions struct {
	strict    bool
	encoding  string
	normalize bool
}

// SourceOption configures ReadEntries.
type SourceOption func(*sourceOptions)

// WithStrict makes malformed lines an error instead of a skipped line.
func WithStrict(strict bool) SourceOption {
	return func(o *sourceOptions) { o.strict = strict }
}

// WithEncoding transcodes the word list to UTF-8.
// Supported: "utf-8" (default), "latin1" / "iso-8859-1", "windows-1252".
func WithEncoding(name string) SourceOption {
	return func(o *sourceOptions) { o.encoding = name }
}

// WithNormalize applies Unicode NFC to words before they are inserted.
func WithNormalize(normalize bool) SourceOption {
	return func(o *sourceOptions) { o.normalize = normalize }
}

func decoderFor(r io.Reader, name string) (io.Reader, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported source encoding %q", name)
}

// ReadEntries parses a word list of "word<TAB>value" lines.
//
// Blank lines are ignored. Lines without a tab, with an empty word, a word
// containing the pad byte, or a character wider than LabelSize bytes are
// skipped with a warning, or fail with ErrMalformedLine under WithStrict.
func ReadEntries(r io.Reader, opts ...SourceOption) ([]WordValue, SourceStats, error) {
	var o sourceOptions
	for _, opt := range opts {
		opt(&o)
	}
	var stats SourceStats

	src, err := decoderFor(r, o.encoding)
	if err != nil {
		return nil, stats, err
	}

	var entries []WordValue
	reader := bufio.NewReader(src)
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, stats, fmt.Errorf("failed to read word list: %w", readErr)
		}
		if line != "" {
			stats.Lines++
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				entry, reason := parseLine(line, o.normalize)
				if reason != "" {
					if o.strict {
						return nil, stats, fmt.Errorf("%w: line %d: %s", ErrMalformedLine, stats.Lines, reason)
					}
					log.Warnf("Skipping word list line %d: %s", stats.Lines, reason)
					stats.Skipped++
				} else {
					entries = append(entries, entry)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	stats.Entries = len(entries)
	return entries, stats, nil
}

// parseLine returns a non-empty reason when the line cannot be used.
func parseLine(line string, normalize bool) (WordValue, string) {
	word, value, ok := strings.Cut(line, "\t")
	if !ok {
		return WordValue{}, "missing tab separator"
	}
	if normalize {
		word = norm.NFC.String(word)
	}
	if word == "" {
		return WordValue{}, "empty word"
	}
	if strings.IndexByte(word, Pad) >= 0 {
		return WordValue{}, fmt.Sprintf("word %q contains the pad byte", word)
	}
	for _, char := range segment.All(word) {
		if len(char) > LabelSize {
			return WordValue{}, fmt.Sprintf("character %q in %q is wider than %d bytes", char, word, LabelSize)
		}
	}
	if strings.IndexByte(value, Pad) >= 0 {
		log.Warnf("Value for %q contains the pad byte and will be truncated on lookup", word)
	}
	return WordValue{Word: word, Value: value}, ""
}
