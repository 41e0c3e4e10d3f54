package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawNode mirrors the subset of the `swaymsg -t get_tree` schema we consume.
type rawNode struct {
	ID               int64        `json:"id"`
	Type             string       `json:"type"`
	Name             *string      `json:"name"`
	PID              *int         `json:"pid"`
	Visible          *bool        `json:"visible"`
	Focused          bool         `json:"focused"`
	Rect             Rect         `json:"rect"`
	WindowRect       Rect         `json:"window_rect"`
	AppID            *string      `json:"app_id"`
	WindowProperties *rawWinProps `json:"window_properties"`
	Nodes            []rawNode    `json:"nodes"`
	FloatingNodes    []rawNode    `json:"floating_nodes"`
}

type rawWinProps struct {
	Class    *string `json:"class"`
	Instance *string `json:"instance"`
	Title    *string `json:"title"`
}

// Parse decodes a layout tree snapshot in the sway/i3 IPC JSON format.
func Parse(data []byte) (*Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode layout tree: %w", err)
	}
	return raw.toNode(), nil
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Node, error) {
	var raw rawNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode layout tree: %w", err)
	}
	return raw.toNode(), nil
}

func (r *rawNode) toNode() *Node {
	n := &Node{
		ID:         r.ID,
		Kind:       ParseKind(r.Type),
		Rect:       r.Rect,
		WindowRect: r.WindowRect,
		PID:        r.PID,
		Visible:    r.Visible != nil && *r.Visible,
		Focused:    r.Focused,
		AppID:      deref(r.AppID),
		Name:       deref(r.Name),
	}
	if r.WindowProperties != nil {
		n.Class = deref(r.WindowProperties.Class)
	}
	if len(r.Nodes) > 0 {
		n.Nodes = make([]*Node, len(r.Nodes))
		for i := range r.Nodes {
			n.Nodes[i] = r.Nodes[i].toNode()
		}
	}
	if len(r.FloatingNodes) > 0 {
		n.FloatingNodes = make([]*Node, len(r.FloatingNodes))
		for i := range r.FloatingNodes {
			n.FloatingNodes[i] = r.FloatingNodes[i].toNode()
		}
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
