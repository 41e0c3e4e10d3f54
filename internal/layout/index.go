package layout

import (
	"strings"
)

// UnknownLabel names windows that carry neither an app id nor a name.
const UnknownLabel = "unknown"

// Descriptor is a visible window projected onto absolute screen coordinates.
type Descriptor struct {
	Rect  Rect
	Label string
	Node  *Node
}

// Prefix is the geometry part of the descriptor's line.
func (d Descriptor) Prefix() string {
	return d.Rect.Geometry()
}

// Line renders the descriptor as "{x},{y} {w}x{h} {label}". The picker treats
// each line as one candidate, so newlines in labels are flattened.
func (d Descriptor) Line() string {
	label := d.Label
	if strings.ContainsAny(label, "\r\n") {
		label = strings.NewReplacer("\r", " ", "\n", " ").Replace(label)
	}
	return d.Prefix() + " " + label
}

// Index is the ordered list of visible windows of one snapshot.
type Index []Descriptor

// BuildIndex emits one descriptor per visible real window, in document order.
func BuildIndex(root *Node) Index {
	var idx Index
	Walk(root, func(n *Node) bool {
		if n.IsWindow() && n.Visible {
			idx = append(idx, Descriptor{
				Rect:  n.ContentRect(),
				Label: n.Label(UnknownLabel),
				Node:  n,
			})
		}
		return true
	})
	return idx
}

// Lines returns the serialized form, one line per descriptor.
func (idx Index) Lines() []string {
	lines := make([]string, len(idx))
	for i, d := range idx {
		lines[i] = d.Line()
	}
	return lines
}

// String joins Lines with newlines; this is what the picker reads on stdin.
func (idx Index) String() string {
	return strings.Join(idx.Lines(), "\n")
}
