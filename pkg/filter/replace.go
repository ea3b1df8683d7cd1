package filter

import (
	"strings"

	"github.com/bastiangx/wordguard/pkg/segment"
)

// Replace substitutes dictionary words in text.
//
// At each position the walk extends as far as the dictionary allows and the
// longest completed word wins. When no word completes, only the first
// character is copied and scanning restarts right after it, so a shorter
// word starting inside a failed longer walk is still replaced. Stop
// characters are copied as they are and end any walk.
func (f *Filter) Replace(text string, sub Substitution) (string, error) {
	text = f.prepare(text)

	var out strings.Builder
	out.Grow(len(text))

	sg := segment.New(text)
	for {
		start := sg.Offset()
		char, ok := sg.Next()
		if !ok {
			break
		}
		if f.isStop(char) {
			out.WriteString(char)
			continue
		}
		node, ok := f.src.Root(char)
		if !ok {
			out.WriteString(char)
			continue
		}

		bestEnd, bestValue := -1, ""
		if node.Terminal() {
			bestEnd, bestValue = sg.Offset(), node.Value
		}
		for node.HasChildren() {
			next, ok := sg.Next()
			if !ok || f.isStop(next) {
				break
			}
			child, found, err := f.src.LookupChild(next, node)
			if err != nil {
				return "", err
			}
			if !found {
				break
			}
			node = child
			if node.Terminal() {
				bestEnd, bestValue = sg.Offset(), node.Value
			}
		}

		if bestEnd < 0 {
			out.WriteString(char)
			sg.Reset(start + len(char))
			continue
		}
		out.WriteString(sub.Apply(text[start:bestEnd], bestValue))
		sg.Reset(bestEnd)
	}
	return out.String(), nil
}
