package layout

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Node {
	t.Helper()
	f, err := os.Open("testdata/tree.json")
	require.NoError(t, err)
	defer f.Close()
	root, err := Decode(f)
	require.NoError(t, err)
	return root
}

func intPtr(v int) *int { return &v }

func TestParseFixture(t *testing.T) {
	root := loadFixture(t)
	require.Equal(t, KindRoot, root.Kind)
	require.Len(t, root.Nodes, 1)

	ws := root.Nodes[0].Nodes[0]
	assert.Equal(t, KindWorkspace, ws.Kind)
	assert.Equal(t, "1", ws.Name)
	require.Len(t, ws.FloatingNodes, 1)
	assert.Equal(t, KindFloatingContainer, ws.FloatingNodes[0].Kind)

	ff := ws.Nodes[0]
	assert.True(t, ff.IsWindow())
	assert.True(t, ff.Visible)
	assert.True(t, ff.Focused)
	assert.Equal(t, 4242, *ff.PID)
	assert.Equal(t, Rect{X: 2, Y: 24, Width: 956, Height: 1054}, ff.WindowRect)

	split := ws.Nodes[1]
	assert.False(t, split.IsWindow())
	assert.Equal(t, "", split.Name)

	spotify := split.Nodes[1]
	assert.Equal(t, "", spotify.AppID)
	assert.Equal(t, "Spotify", spotify.Class)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"type": "root", "nodes": [`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to decode layout tree")
}

func TestBuildIndexFixture(t *testing.T) {
	idx := BuildIndex(loadFixture(t))
	require.Equal(t, []string{
		"2,24 956x1054 firefox",
		"962,2 956x536 foot",
		"962,542 956x536 Spotify Premium",
		"1500,700 400x300 firefox-pip",
	}, idx.Lines())
	require.Equal(t, strings.Join(idx.Lines(), "\n"), idx.String())
	require.Equal(t, int64(10), idx[0].Node.ID)
}

func TestBuildIndexOrderFixedBeforeFloating(t *testing.T) {
	win := func(label string, x int) *Node {
		return &Node{
			Kind:       KindContainer,
			PID:        intPtr(1),
			Visible:    true,
			AppID:      label,
			Rect:       Rect{X: x, Width: 10, Height: 10},
			WindowRect: Rect{Width: 10, Height: 10},
		}
	}
	root := &Node{
		Kind: KindWorkspace,
		FloatingNodes: []*Node{
			win("float-a", 100),
			win("float-b", 200),
		},
		Nodes: []*Node{
			{Kind: KindContainer, Nodes: []*Node{win("deep", 1)}},
			win("tiled", 2),
		},
	}

	var labels []string
	for _, d := range BuildIndex(root) {
		labels = append(labels, d.Label)
	}
	require.Equal(t, []string{"deep", "tiled", "float-a", "float-b"}, labels)
}

func TestBuildIndexEmitsParentAndNestedChild(t *testing.T) {
	child := &Node{Kind: KindContainer, PID: intPtr(2), Visible: true, AppID: "child"}
	parent := &Node{Kind: KindContainer, PID: intPtr(1), Visible: true, AppID: "parent", Nodes: []*Node{child}}

	idx := BuildIndex(parent)
	require.Len(t, idx, 2)
	require.Equal(t, "parent", idx[0].Label)
	require.Equal(t, "child", idx[1].Label)
}

func TestBuildIndexSkipsInvisibleAndNonWindows(t *testing.T) {
	root := &Node{
		Kind: KindWorkspace,
		Nodes: []*Node{
			{Kind: KindContainer, PID: intPtr(1), Visible: false, AppID: "hidden"},
			{Kind: KindContainer, Visible: true, AppID: "no-pid"},
			{Kind: KindContainer, PID: intPtr(3), Visible: true},
		},
	}
	idx := BuildIndex(root)
	require.Len(t, idx, 1)
	require.Equal(t, UnknownLabel, idx[0].Label)
	require.Equal(t, "0,0 0x0 unknown", idx[0].Line())
}

func TestBuildIndexNilAndDeep(t *testing.T) {
	require.Empty(t, BuildIndex(nil))
	require.Equal(t, "", BuildIndex(nil).String())

	root := &Node{Kind: KindRoot}
	cur := root
	for i := 0; i < 100000; i++ {
		next := &Node{Kind: KindContainer}
		cur.Nodes = []*Node{next}
		cur = next
	}
	cur.PID = intPtr(7)
	cur.Visible = true
	cur.AppID = "leaf"

	idx := BuildIndex(root)
	require.Len(t, idx, 1)
	require.Equal(t, "leaf", idx[0].Label)
}

func TestDescriptorLineFlattensNewlines(t *testing.T) {
	d := Descriptor{Rect: Rect{X: 1, Y: 2, Width: 3, Height: 4}, Label: "two\nlines"}
	require.Equal(t, "1,2 3x4 two lines", d.Line())
	require.Equal(t, "1,2 3x4", d.Prefix())
}

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 500, Height: 500}
	for _, tc := range []struct {
		x, y int
		want bool
	}{
		{10, 10, true},
		{510, 510, true},
		{50, 50, true},
		{9, 50, false},
		{50, 511, false},
	} {
		assert.Equal(t, tc.want, r.Contains(tc.x, tc.y), "(%d,%d)", tc.x, tc.y)
	}
}

func TestParseGeometry(t *testing.T) {
	r, err := ParseGeometry("100,100 200x150")
	require.NoError(t, err)
	require.Equal(t, Rect{X: 100, Y: 100, Width: 200, Height: 150}, r)
	require.Equal(t, "100,100 200x150", r.Geometry())

	r, err = ParseGeometry("-1920,0 10x10")
	require.NoError(t, err)
	require.Equal(t, -1920, r.X)

	for _, bad := range []string{
		"",
		"100,100",
		"100 100 200x150",
		"100;100 200x150",
		"100,100 200*150",
		"a,100 200x150",
		"100,100 200x-5",
		"100,100 200x150 extra",
	} {
		_, err := ParseGeometry(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseKind(t *testing.T) {
	require.Equal(t, KindContainer, ParseKind("con"))
	require.Equal(t, KindFloatingContainer, ParseKind("floating_con"))
	require.Equal(t, KindUnknown, ParseKind("something"))
	require.Equal(t, "workspace", KindWorkspace.String())
	require.True(t, KindFloatingContainer.IsContainer())
	require.False(t, KindWorkspace.IsContainer())
}

func TestWalkStopsEarly(t *testing.T) {
	root := loadFixture(t)
	visited := 0
	Walk(root, func(n *Node) bool {
		visited++
		return n.Kind != KindWorkspace
	})
	require.Equal(t, 3, visited)
}
