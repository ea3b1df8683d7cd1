package dictionary

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bastiangx/wordguard/pkg/segment"
	"github.com/charmbracelet/log"
)

// BuildStats summarizes a finished build.
type BuildStats struct {
	Words      int
	Nodes      int
	Records    int
	ValueWidth int
	Bytes      int64
}

type buildEdge struct {
	label string
	child int
}

type buildNode struct {
	children []buildEdge
	value    string
}

type edgeKey struct {
	parent int
	label  string
}

// arena is the in-memory trie used only while building. Node 0 is the root.
type arena struct {
	nodes    []buildNode
	index    map[edgeKey]int
	words    map[string]struct{}
	maxValue int
}

func newArena() *arena {
	return &arena{
		nodes: make([]buildNode, 1, 1024),
		index: make(map[edgeKey]int),
		words: make(map[string]struct{}),
	}
}

// insert adds word; a repeated word overwrites the earlier value.
func (a *arena) insert(word, value string) {
	cur := 0
	for _, char := range segment.All(word) {
		key := edgeKey{parent: cur, label: char}
		next, ok := a.index[key]
		if !ok {
			next = len(a.nodes)
			a.nodes = append(a.nodes, buildNode{})
			a.nodes[cur].children = append(a.nodes[cur].children, buildEdge{label: char, child: next})
			a.index[key] = next
		}
		cur = next
	}
	a.nodes[cur].value = value
	a.words[word] = struct{}{}
	if len(value) > a.maxValue {
		a.maxValue = len(value)
	}
}

// slot is one sibling whose record has been reserved at offset.
type slot struct {
	label  string
	node   int
	offset int64
}

// group is a run of siblings written contiguously. next is the first
// sibling not yet resolved.
type group struct {
	slots    []slot
	next     int
	reserved bool
}

func (a *arena) newGroup(node int) *group {
	edges := a.nodes[node].children
	g := &group{slots: make([]slot, len(edges))}
	for i, e := range edges {
		g.slots[i] = slot{label: e.label, node: e.child}
	}
	sort.Slice(g.slots, func(i, j int) bool {
		return g.slots[i].label < g.slots[j].label
	})
	return g
}

// Build serializes entries into w.
//
// Siblings are reserved as placeholder records before any of them is
// resolved, so each child pointer is back-patched once the position of the
// child group is known.
func Build(entries []WordValue, w io.WriterAt) (BuildStats, error) {
	a := newArena()
	for _, e := range entries {
		if e.Word == "" {
			continue
		}
		a.insert(e.Word, e.Value)
	}
	return a.serialize(w)
}

func (a *arena) serialize(w io.WriterAt) (BuildStats, error) {
	stats := BuildStats{Words: len(a.words), Nodes: len(a.nodes) - 1, ValueWidth: a.maxValue}

	header, err := newHeader(len(a.nodes[0].children), a.maxValue)
	if err != nil {
		return stats, err
	}
	hb, _ := header.MarshalBinary()
	if _, err := w.WriteAt(hb, 0); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	width := int64(header.RecordWidth)
	end := int64(HeaderSize)
	record := make([]byte, width)
	patch := make([]byte, width-LabelSize)

	var stack []*group
	if root := a.newGroup(0); len(root.slots) > 0 {
		stack = append(stack, root)
	}

	for len(stack) > 0 {
		g := stack[len(stack)-1]

		if !g.reserved {
			if len(g.slots) > maxU16 {
				return stats, fmt.Errorf("%w: %d siblings in one group (max %d)", ErrTooLarge, len(g.slots), maxU16)
			}
			for i := range g.slots {
				encodeLabel(record, g.slots[i].label)
				encodeLinks(record[LabelSize:], 0, 0)
				encodeValue(record[recordFixed:], "")
				if _, err := w.WriteAt(record, end); err != nil {
					return stats, fmt.Errorf("failed to reserve record: %w", err)
				}
				g.slots[i].offset = end
				end += width
				stats.Records++
			}
			g.reserved = true
		}

		s := g.slots[g.next]
		node := a.nodes[s.node]
		var childOffset uint32
		if len(node.children) > 0 {
			if end > maxU32 {
				return stats, fmt.Errorf("%w: child offset %d", ErrTooLarge, end)
			}
			childOffset = uint32(end)
		}
		encodeLinks(patch, uint16(len(node.children)), childOffset)
		encodeValue(patch[recordFixed-LabelSize:], node.value)
		if _, err := w.WriteAt(patch, s.offset+LabelSize); err != nil {
			return stats, fmt.Errorf("failed to patch record at %d: %w", s.offset, err)
		}

		if len(node.children) > 0 {
			stack = append(stack, a.newGroup(s.node))
			continue
		}

		g.next++
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next < len(top.slots) {
				break
			}
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				stack[len(stack)-1].next++
			}
		}
	}

	stats.Bytes = end
	return stats, nil
}

// Make compiles the word list at inputPath into a dictionary at outputPath.
// A failed build removes the partial output.
func Make(inputPath, outputPath string, opts ...SourceOption) (stats BuildStats, err error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open word list %s: %w", inputPath, err)
	}
	defer in.Close()

	entries, sourceStats, err := ReadEntries(in, opts...)
	if err != nil {
		return stats, fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}
	log.Debugf("Read %d entries from %s (%d lines, %d skipped)",
		sourceStats.Entries, inputPath, sourceStats.Lines, sourceStats.Skipped)

	out, err := os.Create(outputPath)
	if err != nil {
		return stats, fmt.Errorf("failed to create dictionary %s: %w", outputPath, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close dictionary %s: %w", outputPath, closeErr)
		}
		if err != nil {
			os.Remove(outputPath)
		}
	}()

	stats, err = Build(entries, out)
	if err != nil {
		return stats, fmt.Errorf("failed to build %s: %w", outputPath, err)
	}
	log.Debugf("Built %s: %d words, %d records, %d bytes", outputPath, stats.Words, stats.Records, stats.Bytes)
	return stats, nil
}
