// Package layout models the window manager's layout tree and flattens it
// into the window index handed to the region picker.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the node type reported by the window manager.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindOutput
	KindWorkspace
	KindContainer
	KindFloatingContainer
	KindDockarea
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindRoot:              "root",
	KindOutput:            "output",
	KindWorkspace:         "workspace",
	KindContainer:         "con",
	KindFloatingContainer: "floating_con",
	KindDockarea:          "dockarea",
}

// ParseKind maps the "type" field of a tree node to a Kind.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsContainer reports whether nodes of this kind can hold an application view.
func (k Kind) IsContainer() bool {
	return k == KindContainer || k == KindFloatingContainer
}

// Rect is an integer rectangle in layout (logical pixel) coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Contains reports whether (x, y) lies inside r, edges included on all sides.
func (r Rect) Contains(x, y int) bool {
	return r.X <= x && x <= r.X+r.Width &&
		r.Y <= y && y <= r.Y+r.Height
}

// Offset turns an outer rect plus a content rect relative to it into the
// absolute content geometry.
func (r Rect) Offset(content Rect) Rect {
	return Rect{
		X:      r.X + content.X,
		Y:      r.Y + content.Y,
		Width:  content.Width,
		Height: content.Height,
	}
}

// Geometry renders r in the "{x},{y} {w}x{h}" form used by slurp and grim.
func (r Rect) Geometry() string {
	var b strings.Builder
	b.Grow(24)
	b.WriteString(strconv.Itoa(r.X))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(r.Y))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(r.Width))
	b.WriteByte('x')
	b.WriteString(strconv.Itoa(r.Height))
	return b.String()
}

func (r Rect) String() string {
	return r.Geometry()
}

// ParseGeometry parses "{x},{y} {w}x{h}". Width and height must not be negative.
func ParseGeometry(s string) (Rect, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Rect{}, fmt.Errorf("geometry %q: expected \"x,y wxh\"", s)
	}

	x, y, ok := strings.Cut(fields[0], ",")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q: missing ',' in position", s)
	}
	w, h, ok := strings.Cut(fields[1], "x")
	if !ok {
		return Rect{}, fmt.Errorf("geometry %q: missing 'x' in size", s)
	}

	var r Rect
	for _, part := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"x", x, &r.X},
		{"y", y, &r.Y},
		{"width", w, &r.Width},
		{"height", h, &r.Height},
	} {
		v, err := strconv.Atoi(part.raw)
		if err != nil {
			return Rect{}, fmt.Errorf("geometry %q: invalid %s: %w", s, part.name, err)
		}
		*part.dst = v
	}
	if r.Width < 0 || r.Height < 0 {
		return Rect{}, fmt.Errorf("geometry %q: negative size", s)
	}
	return r, nil
}

// Node is one element of the layout tree. Trees are built once per run and
// never mutated afterwards.
type Node struct {
	ID   int64
	Kind Kind

	// Rect is the outer, decorated bounding box.
	Rect Rect
	// WindowRect is the content area relative to Rect. Only meaningful for windows.
	WindowRect Rect

	// PID is set only for nodes backed by an application window.
	PID     *int
	Visible bool
	Focused bool

	AppID string
	Name  string
	Class string

	Nodes         []*Node
	FloatingNodes []*Node
}

// IsWindow reports whether the node is a real application window.
func (n *Node) IsWindow() bool {
	return n.PID != nil
}

// Children returns tiled children followed by floating children.
func (n *Node) Children() []*Node {
	if len(n.FloatingNodes) == 0 {
		return n.Nodes
	}
	out := make([]*Node, 0, len(n.Nodes)+len(n.FloatingNodes))
	out = append(out, n.Nodes...)
	return append(out, n.FloatingNodes...)
}

// ContentRect is the absolute geometry of the window's drawable area.
func (n *Node) ContentRect() Rect {
	return n.Rect.Offset(n.WindowRect)
}

// Label returns the first non-empty of the application id, the name and the
// given fallbacks.
func (n *Node) Label(fallbacks ...string) string {
	if n.AppID != "" {
		return n.AppID
	}
	if n.Name != "" {
		return n.Name
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

// Walk visits the tree depth-first in document order: a node before its
// children, tiled children before floating ones. It stops as soon as fn
// returns false. An explicit stack keeps deep trees off the call stack.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		if !fn(n) {
			return
		}
		for i := len(n.FloatingNodes) - 1; i >= 0; i-- {
			stack = append(stack, n.FloatingNodes[i])
		}
		for i := len(n.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, n.Nodes[i])
		}
	}
}
