// Package segment splits UTF-8 text into characters by looking only at the
// leading byte of each one.
//
// It does not validate continuation bytes. Malformed input yields whatever raw
// bytes fall into the computed width, which keeps dictionary labels and text
// tokens byte-identical to each other no matter what the input looks like.
package segment

import "iter"

// Width returns the byte width of the character starting with lead.
func Width(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead < 0xE0:
		return 2
	case lead < 0xF0:
		return 3
	default:
		return 4
	}
}

// Segmenter walks a string one character at a time.
// The only state it keeps is the current byte offset.
type Segmenter struct {
	s   string
	off int
}

// New returns a Segmenter positioned at the start of s.
func New(s string) *Segmenter {
	return &Segmenter{s: s}
}

// Next returns the next character and advances past it.
// ok is false once the string is exhausted.
func (sg *Segmenter) Next() (char string, ok bool) {
	if sg.off >= len(sg.s) {
		return "", false
	}
	end := sg.off + Width(sg.s[sg.off])
	if end > len(sg.s) {
		// truncated tail
		end = len(sg.s)
	}
	char = sg.s[sg.off:end]
	sg.off = end
	return char, true
}

// Offset is the byte offset of the next character Next would return.
func (sg *Segmenter) Offset() int {
	return sg.off
}

// Reset moves the scan position to the given byte offset.
func (sg *Segmenter) Reset(off int) {
	if off < 0 {
		off = 0
	}
	if off > len(sg.s) {
		off = len(sg.s)
	}
	sg.off = off
}

// All yields every character of s together with its byte offset.
func All(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		sg := New(s)
		for {
			off := sg.Offset()
			char, ok := sg.Next()
			if !ok || !yield(off, char) {
				return
			}
		}
	}
}

// Split returns the characters of s in order.
func Split(s string) []string {
	chars := make([]string, 0, len(s))
	for _, char := range All(s) {
		chars = append(chars, char)
	}
	return chars
}
