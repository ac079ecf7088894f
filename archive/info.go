package archive

import (
	"fmt"
	"io"
	"strings"
)

// infoNode is one class record or one named field in an InfoWriter tree.
type infoNode struct {
	name     string // field name given by Var, empty if unnamed
	class    string // class name; empty for plain fields
	version  uint8
	start    int64
	size     int64
	children []*infoNode
}

// InfoWriter records the class/field layout of a saved structure together
// with the byte size of every part. It writes no data.
type InfoWriter struct {
	count   StreamWriter
	root    infoNode
	stack   []*infoNode
	pending string
}

// NewInfoWriter returns an empty InfoWriter.
func NewInfoWriter() *InfoWriter {
	iw := &InfoWriter{count: StreamWriter{w: io.Discard}}
	iw.stack = []*infoNode{&iw.root}
	return iw
}

func (iw *InfoWriter) top() *infoNode { return iw.stack[len(iw.stack)-1] }

func (iw *InfoWriter) takeName() string {
	n := iw.pending
	iw.pending = ""
	return n
}

// field accounts the bytes written by fn to a field node.
func (iw *InfoWriter) field(fn func()) {
	start := iw.count.Pos()
	fn()
	size := iw.count.Pos() - start
	name := iw.takeName()
	parent := iw.top()
	// Consecutive unnamed writes merge into the previous unnamed field.
	if name == "" && len(parent.children) > 0 {
		last := parent.children[len(parent.children)-1]
		if last.class == "" && last.name == "" {
			last.size += size
			return
		}
	}
	parent.children = append(parent.children, &infoNode{name: name, start: start, size: size})
}

// StartClass opens a class node.
func (iw *InfoWriter) StartClass(name string, version uint8) {
	n := &infoNode{name: iw.takeName(), class: name, version: version, start: iw.count.Pos()}
	iw.count.StartClass(name, version)
	parent := iw.top()
	parent.children = append(parent.children, n)
	iw.stack = append(iw.stack, n)
}

// EndClass closes the current class node.
func (iw *InfoWriter) EndClass() {
	iw.count.EndClass()
	if len(iw.stack) == 1 {
		iw.count.err = fmt.Errorf("archive: EndClass without StartClass")
		return
	}
	n := iw.top()
	n.size = iw.count.Pos() - n.start
	iw.stack = iw.stack[:len(iw.stack)-1]
}

// Var names the next field or class.
func (iw *InfoWriter) Var(name string) Writer {
	iw.pending = name
	return iw
}

func (iw *InfoWriter) PutUint64(v uint64) { iw.field(func() { iw.count.PutUint64(v) }) }
func (iw *InfoWriter) PutUint8(v uint8)   { iw.field(func() { iw.count.PutUint8(v) }) }
func (iw *InfoWriter) SaveBin(p []byte)   { iw.field(func() { iw.count.SaveBin(p) }) }
func (iw *InfoWriter) SaveMem(p []byte)   { iw.field(func() { iw.count.SaveMem(p) }) }

// Pos returns the number of bytes that would have been written.
func (iw *InfoWriter) Pos() int64 { return iw.count.Pos() }

// Err reports unbalanced EndClass calls.
func (iw *InfoWriter) Err() error { return iw.count.Err() }

// String renders the recorded layout as an indented tree, one node per line:
//
//	RRR2 v1  1234 B
//	  bit_len  8 B
//	  R: Bitvector v1  40 B
func (iw *InfoWriter) String() string {
	var sb strings.Builder
	for _, c := range iw.root.children {
		writeNode(&sb, c, 0)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *infoNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.class != "" && n.name != "":
		fmt.Fprintf(sb, "%s: %s v%d  %d B\n", n.name, n.class, n.version, n.size)
	case n.class != "":
		fmt.Fprintf(sb, "%s v%d  %d B\n", n.class, n.version, n.size)
	case n.name != "":
		fmt.Fprintf(sb, "%s  %d B\n", n.name, n.size)
	default:
		fmt.Fprintf(sb, "-  %d B\n", n.size)
	}
	for _, c := range n.children {
		writeNode(sb, c, depth+1)
	}
}
