// Package filter scans text against a compiled dictionary.
//
// Search reports every dictionary word found in the text, overlapping and
// nested ones included. Replace substitutes the leftmost-longest match at
// each position. Neither match can cross a stop character.
package filter

import (
	"sort"

	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/segment"
	"golang.org/x/text/unicode/norm"
)

// DefaultStops are the characters that end every walk.
const DefaultStops = ",.? "

// Source is the part of a dictionary the engines walk.
type Source interface {
	Root(char string) (dictionary.Entry, bool)
	LookupChild(char string, parent dictionary.Entry) (dictionary.Entry, bool, error)
}

// Match is one found word.
type Match struct {
	Value string
	Count int
}

// Result maps each word found to its value and number of occurrences.
type Result map[string]Match

// Words returns the found words sorted.
func (r Result) Words() []string {
	words := make([]string, 0, len(r))
	for w := range r {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func (r Result) add(word, value string) {
	m := r[word]
	m.Value = value
	m.Count++
	r[word] = m
}

// Filter runs Search and Replace against a Source.
type Filter struct {
	src       Source
	stopList  string
	stops     map[string]struct{}
	normalize bool
}

// Option configures a Filter.
type Option func(*Filter)

// WithStops replaces the stop characters.
func WithStops(stops string) Option {
	return func(f *Filter) {
		f.stopList = stops
		f.stops = make(map[string]struct{}, len(stops))
		for _, char := range segment.All(stops) {
			f.stops[char] = struct{}{}
		}
	}
}

// WithNormalize applies Unicode NFC to text before scanning.
// Use it when the dictionary was built with normalized words. Replace then
// returns the normalized text, so unmatched parts may differ from the input
// in their Unicode form.
func WithNormalize(normalize bool) Option {
	return func(f *Filter) { f.normalize = normalize }
}

// New returns a Filter over src.
func New(src Source, opts ...Option) *Filter {
	f := &Filter{src: src}
	WithStops(DefaultStops)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stops returns the stop characters.
func (f *Filter) Stops() string {
	return f.stopList
}

func (f *Filter) isStop(char string) bool {
	_, ok := f.stops[char]
	return ok
}

func (f *Filter) prepare(text string) string {
	if f.normalize {
		return norm.NFC.String(text)
	}
	return text
}

// TransformFunc computes the replacement for a matched word.
type TransformFunc func(word, value string) string

// Substitution is either a literal replacement or a transform of the match.
type Substitution struct {
	literal   string
	transform TransformFunc
}

// Literal replaces every match with s.
func Literal(s string) Substitution {
	return Substitution{literal: s}
}

// Transform replaces every match with fn(word, value).
func Transform(fn TransformFunc) Substitution {
	return Substitution{transform: fn}
}

// ValueOf replaces every match with its dictionary value.
func ValueOf() Substitution {
	return Transform(func(_, value string) string { return value })
}

// Apply returns the replacement for word.
func (s Substitution) Apply(word, value string) string {
	if s.transform != nil {
		return s.transform(word, value)
	}
	return s.literal
}
