// Package dictionary reads and writes the compiled trie dictionary.
//
// The file is a 6 byte header followed by fixed-width records. Each record
// carries a character label of up to 3 bytes, the number of children, the
// absolute offset of the children's contiguous group and a padded value:
//
//	header:  u16 root count | u16 value width | u16 record width
//	record:  [3]byte label | u16 child count | u32 child offset | value
//
// Only the root level is kept in memory; every other node is read from disk
// when a walk reaches it.
package dictionary

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/mmap"
)

// readerAtCloser is what both file backends provide.
type readerAtCloser interface {
	io.ReaderAt
	io.Closer
}

type openOptions struct {
	mmap       bool
	cacheNodes int
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithMmap memory-maps the dictionary instead of issuing a read per lookup.
func WithMmap(enabled bool) OpenOption {
	return func(o *openOptions) { o.mmap = enabled }
}

// WithCache keeps up to n child lookups in memory. Zero disables the cache.
func WithCache(n int) OpenOption {
	return func(o *openOptions) { o.cacheNodes = n }
}

// Dict is an open dictionary file.
//
// Lookups use positional reads, so a Dict may be shared between goroutines.
type Dict struct {
	path   string
	r      readerAtCloser
	size   int64
	header Header
	root   map[string]Entry
	cache  *NodeCache

	closeOnce sync.Once
	closed    chan struct{}
}

// Open reads the header and root level of the dictionary at path.
func Open(path string, opts ...OpenOption) (*Dict, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		r    readerAtCloser
		size int64
	)
	if o.mmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to map dictionary %s: %w", path, err)
		}
		r, size = m, int64(m.Len())
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to stat dictionary %s: %w", path, err)
		}
		r, size = f, info.Size()
	}

	d := &Dict{
		path:   path,
		r:      r,
		size:   size,
		closed: make(chan struct{}),
	}
	if err := d.load(); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	if o.cacheNodes > 0 {
		d.cache = NewNodeCache(o.cacheNodes)
	}

	log.Debugf("Opened dictionary %s: %d root entries, value width %d, %d bytes",
		path, d.header.RootChildCount, d.header.ValueWidth, size)
	return d, nil
}

func (d *Dict) load() error {
	hb, err := d.readAt(0, HeaderSize)
	if err != nil {
		return err
	}
	if err := d.header.UnmarshalBinary(hb); err != nil {
		return err
	}

	count := int(d.header.RootChildCount)
	width := int(d.header.RecordWidth)
	data, err := d.readAt(HeaderSize, count*width)
	if err != nil {
		return err
	}
	d.root = make(map[string]Entry, count)
	for i := 0; i < count; i++ {
		rec := data[i*width : (i+1)*width]
		d.root[string(decodeLabel(rec))] = decodeEntry(rec)
	}
	return nil
}

// readAt reads exactly n bytes at off. Reads outside the file are ErrCorrupt.
func (d *Dict) readAt(off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > d.size {
		return nil, fmt.Errorf("%w: read of %d bytes at %d past end of %d byte file", ErrCorrupt, n, off, d.size)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := d.r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at %d: %w", n, off, err)
	}
	return buf, nil
}

// Header returns the file header.
func (d *Dict) Header() Header {
	return d.header
}

// Path returns the file the dictionary was opened from.
func (d *Dict) Path() string {
	return d.path
}

// Root returns the cached first-level entry for char.
func (d *Dict) Root(char string) (Entry, bool) {
	e, ok := d.root[char]
	return e, ok
}

// LookupChild finds char among the children of parent.
//
// The whole sibling group is read in one call and scanned linearly; groups
// are small and the format has no index. A miss returns false and a nil
// error.
func (d *Dict) LookupChild(char string, parent Entry) (Entry, bool, error) {
	if d.isClosed() {
		return Entry{}, false, ErrClosed
	}
	if parent.ChildCount == 0 {
		return Entry{}, false, nil
	}
	if d.cache != nil {
		if e, found, ok := d.cache.Get(parent.ChildOffset, char); ok {
			return e, found, nil
		}
	}

	width := int(d.header.RecordWidth)
	data, err := d.readAt(int64(parent.ChildOffset), int(parent.ChildCount)*width)
	if err != nil {
		return Entry{}, false, err
	}

	var (
		found bool
		entry Entry
	)
	for i := 0; i < int(parent.ChildCount); i++ {
		rec := data[i*width : (i+1)*width]
		if string(decodeLabel(rec)) == char {
			entry, found = decodeEntry(rec), true
			break
		}
	}

	if d.cache != nil {
		d.cache.Put(parent.ChildOffset, char, entry, found)
	}
	return entry, found, nil
}

// Stats returns counters for logging and the IPC info request.
func (d *Dict) Stats() map[string]int {
	stats := map[string]int{
		"rootEntries": int(d.header.RootChildCount),
		"valueWidth":  int(d.header.ValueWidth),
		"recordWidth": int(d.header.RecordWidth),
		"fileBytes":   int(d.size),
	}
	if d.cache != nil {
		for k, v := range d.cache.Stats() {
			stats[k] = v
		}
	}
	return stats
}

func (d *Dict) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}

// Close releases the file. Only the first call closes; later calls return ErrClosed.
func (d *Dict) Close() error {
	err := ErrClosed
	d.closeOnce.Do(func() {
		close(d.closed)
		err = d.r.Close()
	})
	return err
}
