/*
Package wordguard finds and replaces dictionary words in UTF-8 text using a
trie that stays on disk.

A word list of "word<TAB>value" lines is compiled once into a compact binary
file. Opening it loads only the first-character level; deeper nodes are read
when a scan reaches them, so dictionaries with millions of entries cost a few
kilobytes of memory.

	if err := wordguard.Make("badwords.txt", "badwords.bin"); err != nil {
		log.Fatal(err)
	}
	dict, err := wordguard.Open("badwords.bin")
	if err != nil {
		log.Fatal(err)
	}
	defer dict.Close()

	hits, _ := dict.Search("some text here")
	clean, _ := dict.Replace("some text here", filter.Literal("***"))

Search reports every occurrence, overlapping and nested words included.
Replace substitutes the leftmost-longest word at each position. Stop
characters (",.? " by default) end every match.

Characters of 4 bytes in UTF-8 (emoji, rare CJK extensions) cannot be stored
in the 3 byte label field; words containing them are skipped at build time.
*/
package wordguard

import (
	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/filter"
)

// Dictionary is an open compiled dictionary with a filter over it.
type Dictionary struct {
	*filter.Filter
	dict *dictionary.Dict
}

// Make compiles the word list at inputPath into outputPath.
func Make(inputPath, outputPath string, opts ...dictionary.SourceOption) error {
	_, err := dictionary.Make(inputPath, outputPath, opts...)
	return err
}

// Open opens a compiled dictionary using the default stop characters.
func Open(path string, opts ...dictionary.OpenOption) (*Dictionary, error) {
	return OpenWithFilter(path, opts, nil)
}

// OpenWithFilter opens a compiled dictionary and applies filter options.
func OpenWithFilter(path string, dictOpts []dictionary.OpenOption, filterOpts []filter.Option) (*Dictionary, error) {
	d, err := dictionary.Open(path, dictOpts...)
	if err != nil {
		return nil, err
	}
	return &Dictionary{Filter: filter.New(d, filterOpts...), dict: d}, nil
}

// Dict exposes the underlying file for stats and raw lookups.
func (d *Dictionary) Dict() *dictionary.Dict {
	return d.dict
}

// Close releases the dictionary file.
func (d *Dictionary) Close() error {
	return d.dict.Close()
}

// Stats reports header fields and node cache counters.
func (d *Dictionary) Stats() map[string]int {
	return d.dict.Stats()
}
