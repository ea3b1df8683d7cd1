package filter

import (
	"github.com/bastiangx/wordguard/pkg/dictionary"
	"github.com/bastiangx/wordguard/pkg/segment"
)

// walk is a partial match still able to grow: the text matched so far and
// the node it reached.
type walk struct {
	prefix string
	node   dictionary.Entry
}

// Search returns every dictionary word occurring in text.
//
// One walk is kept per start position since the last stop character. Each
// character first advances every live walk, then seeds a new walk at the
// root, so a short word and a longer word sharing its prefix are both
// counted.
func (f *Filter) Search(text string) (Result, error) {
	text = f.prepare(text)
	result := Result{}

	var active, next []walk
	for _, char := range segment.All(text) {
		if f.isStop(char) {
			active = active[:0]
			continue
		}

		next = next[:0]
		for _, w := range active {
			child, found, err := f.src.LookupChild(char, w.node)
			if err != nil {
				return result, err
			}
			if !found {
				continue
			}
			word := w.prefix + char
			if child.Terminal() {
				result.add(word, child.Value)
			}
			if child.HasChildren() {
				next = append(next, walk{prefix: word, node: child})
			}
		}

		if root, ok := f.src.Root(char); ok {
			if root.Terminal() {
				result.add(char, root.Value)
			}
			if root.HasChildren() {
				next = append(next, walk{prefix: char, node: root})
			}
		}

		active, next = next, active
	}
	return result, nil
}
