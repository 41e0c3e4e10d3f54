// Package selection decides whether a picked region is an existing window or
// a freeform area, and which label names the resulting screenshot.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bryanchriswhite/swayshot/internal/layout"
)

// DefaultLabel names captures that cannot be attributed to a window.
const DefaultLabel = "screenshot"

var (
	// ErrEmptySelection means the picker returned nothing, i.e. the user cancelled.
	ErrEmptySelection = errors.New("empty selection")
	// ErrMalformedRegion means the picker output is not "{x},{y} {w}x{h}".
	ErrMalformedRegion = errors.New("malformed region")
)

// Kind tells how a selection was interpreted.
type Kind int

const (
	WindowMatch Kind = iota + 1
	FreeformRegion
)

func (k Kind) String() string {
	switch k {
	case WindowMatch:
		return "window"
	case FreeformRegion:
		return "region"
	default:
		return "unknown"
	}
}

// MatchMode selects how a picked region is compared with the window index.
type MatchMode string

const (
	// MatchPrefix compares the picker's raw text with each index line's
	// geometry prefix, exactly as slurp echoes it back.
	MatchPrefix MatchMode = "prefix"
	// MatchNumeric parses the region and compares rectangles numerically.
	MatchNumeric MatchMode = "numeric"
)

// ParseMatchMode validates a configured match mode name.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchPrefix, "":
		return MatchPrefix, nil
	case MatchNumeric:
		return MatchNumeric, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (use %q or %q)", s, MatchPrefix, MatchNumeric)
	}
}

// Result is the resolved capture target.
type Result struct {
	Rect  layout.Rect
	Label string
	Kind  Kind
	// Window is the node the label came from, nil when none was found.
	Window *layout.Node
}

// Resolver resolves picked regions against one snapshot.
type Resolver struct {
	Mode MatchMode
}

// Resolve uses the default prefix matching.
func Resolve(root *layout.Node, idx layout.Index, region string) (Result, error) {
	return Resolver{Mode: MatchPrefix}.Resolve(root, idx, region)
}

// Resolve interprets region, the picker's output. A region that coincides
// with an indexed window yields a WindowMatch with that window's geometry.
// Anything else is captured as drawn and named after the first window that
// contains the region's top-left corner.
func (r Resolver) Resolve(root *layout.Node, idx layout.Index, region string) (Result, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return Result{}, ErrEmptySelection
	}

	if d, ok := r.match(idx, region); ok {
		return Result{
			Rect:   d.Rect,
			Label:  d.Label,
			Kind:   WindowMatch,
			Window: d.Node,
		}, nil
	}

	rect, err := ParseRegion(region)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Rect:  rect,
		Label: DefaultLabel,
		Kind:  FreeformRegion,
	}
	if win := FindWindowAt(root, rect.X, rect.Y); win != nil {
		res.Window = win
		res.Label = win.Label(win.Class, DefaultLabel)
	}
	return res, nil
}

func (r Resolver) match(idx layout.Index, region string) (layout.Descriptor, bool) {
	if r.Mode == MatchNumeric {
		rect, err := ParseRegion(region)
		if err != nil {
			return layout.Descriptor{}, false
		}
		for _, d := range idx {
			if d.Rect == rect {
				return d, true
			}
		}
		return layout.Descriptor{}, false
	}

	// The comparison is textual: slurp prints the chosen candidate's geometry
	// verbatim, so formatting must stay in sync with layout.Rect.Geometry.
	// Comparing the whole prefix keeps "1,1 2x3" from matching "1,1 2x30 foot".
	for _, d := range idx {
		if d.Prefix() == region {
			return d, true
		}
	}
	return layout.Descriptor{}, false
}

// ParseRegion parses picker output into a rectangle.
func ParseRegion(region string) (layout.Rect, error) {
	rect, err := layout.ParseGeometry(region)
	if err != nil {
		return layout.Rect{}, fmt.Errorf("%w: %w", ErrMalformedRegion, err)
	}
	return rect, nil
}

// FindWindowAt returns the first window container, in document order, whose
// outer rect contains (x, y). Parents are tested before their children and
// overlapping windows are not ranked by stacking order.
func FindWindowAt(root *layout.Node, x, y int) *layout.Node {
	var found *layout.Node
	layout.Walk(root, func(n *layout.Node) bool {
		if n.Kind.IsContainer() && n.IsWindow() && n.Rect.Contains(x, y) {
			found = n
			return false
		}
		return true
	})
	return found
}
