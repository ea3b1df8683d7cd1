package segment

import (
	"reflect"
	"testing"
)

func TestWidth(t *testing.T) {
	testCases := []struct {
		lead byte
		want int
	}{
		{'a', 1},
		{0x7F, 1},
		{0xC3, 2},
		{0xDF, 2},
		{0xE0, 3},
		{0xE4, 3},
		{0xF0, 4},
		{0xFF, 4},
	}

	for _, tc := range testCases {
		if got := Width(tc.lead); got != tc.want {
			t.Errorf("Width(%#x) = %d, want %d", tc.lead, got, tc.want)
		}
	}
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"abc", []string{"a", "b", "c"}},
		{"für", []string{"f", "ü", "r"}},
		{"南京市", []string{"南", "京", "市"}},
		{"a😀b", []string{"a", "😀", "b"}},
		{"x, y", []string{"x", ",", " ", "y"}},
	}

	for _, tc := range testCases {
		got := Split(tc.input)
		if !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Split(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestSplitMalformed(t *testing.T) {
	// lead byte of a 3-byte character followed by ASCII
	got := Split("\xE4ab")
	if !reflect.DeepEqual(got, []string{"\xE4ab"}) {
		t.Errorf("unexpected tokens for malformed input: %q", got)
	}

	// truncated tail does not panic
	got = Split("a\xE4\xB8")
	if !reflect.DeepEqual(got, []string{"a", "\xE4\xB8"}) {
		t.Errorf("unexpected tokens for truncated input: %q", got)
	}
}

func TestSegmenterReset(t *testing.T) {
	sg := New("南京a")
	first, _ := sg.Next()
	if first != "南" || sg.Offset() != 3 {
		t.Fatalf("got %q at %d", first, sg.Offset())
	}

	sg.Reset(6)
	char, ok := sg.Next()
	if !ok || char != "a" {
		t.Fatalf("after Reset(6) got %q, %v", char, ok)
	}
	if _, ok := sg.Next(); ok {
		t.Error("expected exhausted segmenter")
	}

	sg.Reset(100)
	if sg.Offset() != len("南京a") {
		t.Errorf("Reset past end should clamp, offset=%d", sg.Offset())
	}
}

func TestAllOffsets(t *testing.T) {
	var offsets []int
	for off := range All("aü南") {
		offsets = append(offsets, off)
	}
	if !reflect.DeepEqual(offsets, []int{0, 1, 3}) {
		t.Errorf("offsets = %v", offsets)
	}
}
