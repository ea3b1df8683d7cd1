package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Binary layout constants.
const (
	HeaderSize = 6
	LabelSize  = 3
	// record bytes that are not the value: label + u16 count + u32 offset
	recordFixed = LabelSize + 2 + 4

	// Pad fills labels and values to their fixed width.
	Pad byte = ' '

	maxU16 = 1<<16 - 1
	maxU32 = 1<<32 - 1
)

var (
	// ErrCorrupt reports a dictionary file whose header or offsets are inconsistent.
	ErrCorrupt = errors.New("dictionary: corrupt file")
	// ErrClosed is returned by operations on a closed Dict.
	ErrClosed = errors.New("dictionary: closed")
	// ErrTooLarge reports a word list that does not fit the binary format limits.
	ErrTooLarge = errors.New("dictionary: exceeds format limits")
	// ErrMalformedLine is returned in strict mode for a word list line that cannot be used.
	ErrMalformedLine = errors.New("dictionary: malformed line")
)

// Header is the fixed 6 byte file header.
type Header struct {
	RootChildCount uint16
	ValueWidth     uint16
	RecordWidth    uint16
}

// Entry is one decoded trie node: where its children live and the value of
// the word ending at it. An empty Value means no word ends here.
type Entry struct {
	ChildCount  uint16
	ChildOffset uint32
	Value       string
}

// HasChildren reports whether the walk can continue past this node.
func (e Entry) HasChildren() bool {
	return e.ChildCount > 0
}

// Terminal reports whether a dictionary word ends at this node.
func (e Entry) Terminal() bool {
	return e.Value != ""
}

func newHeader(rootChildren, valueWidth int) (Header, error) {
	if rootChildren > maxU16 {
		return Header{}, fmt.Errorf("%w: %d root characters (max %d)", ErrTooLarge, rootChildren, maxU16)
	}
	if valueWidth+recordFixed > maxU16 {
		return Header{}, fmt.Errorf("%w: value width %d", ErrTooLarge, valueWidth)
	}
	return Header{
		RootChildCount: uint16(rootChildren),
		ValueWidth:     uint16(valueWidth),
		RecordWidth:    uint16(valueWidth + recordFixed),
	}, nil
}

// MarshalBinary encodes the header big-endian.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:], h.RootChildCount)
	binary.BigEndian.PutUint16(buf[2:], h.ValueWidth)
	binary.BigEndian.PutUint16(buf[4:], h.RecordWidth)
	return buf, nil
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(data))
	}
	h.RootChildCount = binary.BigEndian.Uint16(data[0:])
	h.ValueWidth = binary.BigEndian.Uint16(data[2:])
	h.RecordWidth = binary.BigEndian.Uint16(data[4:])
	if int(h.RecordWidth) != int(h.ValueWidth)+recordFixed {
		return fmt.Errorf("%w: record width %d does not match value width %d",
			ErrCorrupt, h.RecordWidth, h.ValueWidth)
	}
	return nil
}

// encodeLabel pads char to LabelSize bytes.
func encodeLabel(dst []byte, char string) {
	n := copy(dst[:LabelSize], char)
	for i := n; i < LabelSize; i++ {
		dst[i] = Pad
	}
}

// encodeLinks writes child count and offset into a 6 byte slice.
func encodeLinks(dst []byte, count uint16, offset uint32) {
	binary.BigEndian.PutUint16(dst[0:], count)
	binary.BigEndian.PutUint32(dst[2:], offset)
}

func encodeValue(dst []byte, value string) {
	n := copy(dst, value)
	for i := n; i < len(dst); i++ {
		dst[i] = Pad
	}
}

// decodeLabel returns the label bytes with trailing pad removed.
func decodeLabel(rec []byte) []byte {
	label := rec[:LabelSize]
	end := len(label)
	for end > 0 && label[end-1] == Pad {
		end--
	}
	return label[:end]
}

// decodeEntry decodes the non-label part of a record.
// The value stops at the first pad byte.
func decodeEntry(rec []byte) Entry {
	e := Entry{
		ChildCount:  binary.BigEndian.Uint16(rec[LabelSize:]),
		ChildOffset: binary.BigEndian.Uint32(rec[LabelSize+2:]),
	}
	value := rec[recordFixed:]
	for i, b := range value {
		if b == Pad {
			value = value[:i]
			break
		}
	}
	e.Value = string(value)
	return e
}

// FileFormat represents the files wordguard reads.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatTrie               // Compiled binary trie dictionary
	FormatText               // Tab separated word list
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatTrie: {
		Format:      FormatTrie,
		Description: "Binary Trie Dictionary",
		Extensions:  []string{".bin", ".dict"},
		MinSize:     HeaderSize,
	},
	FormatText: {
		Format:      FormatText,
		Description: "Tab Separated Word List",
		Extensions:  []string{".txt", ".tsv"},
		MinSize:     1,
	},
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	validExt := false
	for _, validExtension := range formatInfo.Extensions {
		if ext == validExtension {
			validExt = true
			break
		}
	}
	if !validExt {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %v)",
			filename, ext, formatInfo.Description, formatInfo.Extensions)
	}

	switch expectedFormat {
	case FormatTrie:
		return validateBinaryFormat(filename, fileInfo.Size())
	case FormatText:
		return validateTextFormat(filename)
	}
	return nil
}

// validateBinaryFormat checks the header and that the root level fits in the file.
func validateBinaryFormat(filename string, size int64) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(file, buf); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	rootEnd := int64(HeaderSize) + int64(h.RootChildCount)*int64(h.RecordWidth)
	if rootEnd > size {
		return fmt.Errorf("%w: %s root level ends at %d, file has %d bytes", ErrCorrupt, filename, rootEnd, size)
	}

	log.Debugf("Binary file %s validated: %d root entries, record width %d", filename, h.RootChildCount, h.RecordWidth)
	return nil
}

// validateTextFormat checks that the first line of a word list has a tab separator
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}
	first, _, _ := strings.Cut(string(buffer[:n]), "\n")
	if !strings.Contains(first, "\t") {
		return fmt.Errorf("%w: %s first line has no tab separator", ErrMalformedLine, filename)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

// DetectFileFormat attempts to detect the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	for _, format := range []FileFormat{FormatTrie, FormatText} {
		if err := ValidateFileFormat(filename, format); err == nil {
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
