package window

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// stickyDesktop is the _NET_WM_DESKTOP value of windows shown on every desktop.
const stickyDesktop = -1

// x11Client is what we learn about one managed X11 window.
type x11Client struct {
	ID      xproto.Window
	Frame   layout.Rect
	Title   string
	Class   string
	PID     *int // nil without _NET_WM_PID
	Mapped  bool
	Desktop int
}

// X11Backend builds a layout snapshot from the EWMH client list of an X server.
// Desktops become workspaces and every client becomes a window container.
type X11Backend struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	atoms  map[string]xproto.Atom
}

// NewX11Backend creates a new X11 backend
func NewX11Backend() (*X11Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11Backend{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}, nil
}

// Name returns the backend name
func (b *X11Backend) Name() string {
	return BackendX11
}

// Close closes the X11 connection
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// Snapshot lists managed clients and projects them into a layout tree
func (b *X11Backend) Snapshot(ctx context.Context) (*layout.Node, error) {
	log := logger.WithComponent("x11-backend")

	ids, err := b.clientList()
	if err != nil {
		return nil, err
	}

	clients := make([]x11Client, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := b.client(id)
		if err != nil {
			log.Debug().Uint32("winID", uint32(id)).Err(err).Msg("Skipping window")
			continue
		}
		clients = append(clients, c)
	}

	screen := layout.Rect{
		Width:  int(b.screen.WidthInPixels),
		Height: int(b.screen.HeightInPixels),
	}
	current, _ := b.cardinal(b.root, "_NET_CURRENT_DESKTOP")

	log.Debug().Int("clients", len(clients)).Int("desktop", current).Msg("Built X11 snapshot")
	return treeFromClients(screen, current, clients), nil
}

// clientList reads _NET_CLIENT_LIST from the root window
func (b *X11Backend) clientList() ([]xproto.Window, error) {
	atom, err := b.getAtom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST atom: %w", err)
	}

	reply, err := xproto.GetProperty(b.conn, false, b.root, atom, xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}

	return decodeWindows(reply.Value), nil
}

// client gathers geometry and identity of one window
func (b *X11Backend) client(win xproto.Window) (x11Client, error) {
	c := x11Client{ID: win}

	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return c, fmt.Errorf("failed to get geometry: %w", err)
	}
	// Geometry is parent-relative; reparenting WMs put clients inside frames.
	abs, err := xproto.TranslateCoordinates(b.conn, win, b.root, 0, 0).Reply()
	if err != nil {
		return c, fmt.Errorf("failed to translate coordinates: %w", err)
	}
	c.Frame = layout.Rect{
		X:      int(abs.DstX),
		Y:      int(abs.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}

	attrs, err := xproto.GetWindowAttributes(b.conn, win).Reply()
	if err == nil {
		c.Mapped = attrs.MapState == xproto.MapStateViewable
	}

	if title, err := b.stringProperty(win, "_NET_WM_NAME"); err == nil {
		c.Title = title
	} else if title, err := b.stringProperty(win, "WM_NAME"); err == nil {
		c.Title = title
	}

	if raw, err := b.stringProperty(win, "WM_CLASS"); err == nil {
		c.Class = parseWMClass(raw)
	}

	if pid, ok := b.cardinal(win, "_NET_WM_PID"); ok {
		c.PID = &pid
	}
	c.Desktop, _ = b.cardinal(win, "_NET_WM_DESKTOP")
	return c, nil
}

func (b *X11Backend) getAtom(name string) (xproto.Atom, error) {
	if atom, ok := b.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	b.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// stringProperty gets a property value as a string
func (b *X11Backend) stringProperty(win xproto.Window, name string) (string, error) {
	atom, err := b.getAtom(name)
	if err != nil {
		return "", err
	}
	reply, err := xproto.GetProperty(b.conn, false, win, atom, xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property %s", name)
	}
	return string(reply.Value), nil
}

// cardinal reads a single CARDINAL property; ok is false when it is absent.
func (b *X11Backend) cardinal(win xproto.Window, name string) (int, bool) {
	atom, err := b.getAtom(name)
	if err != nil {
		return 0, false
	}
	reply, err := xproto.GetProperty(b.conn, false, win, atom, xproto.AtomCardinal, 0, 1).Reply()
	if err != nil {
		return 0, false
	}
	return decodeCardinal(reply.Value)
}

// decodeCardinal reads the first 32-bit value. 0xFFFFFFFF is reported as -1.
func decodeCardinal(value []byte) (int, bool) {
	if len(value) < 4 {
		return 0, false
	}
	v := xgb.Get32(value)
	if v == 0xFFFFFFFF {
		return -1, true
	}
	return int(v), true
}

// decodeWindows reads a WINDOW[] property value such as _NET_CLIENT_LIST.
func decodeWindows(value []byte) []xproto.Window {
	ids := make([]xproto.Window, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		ids = append(ids, xproto.Window(xgb.Get32(value[i:])))
	}
	return ids
}

// parseWMClass picks the class from "instance\0class\0", falling back to the instance.
func parseWMClass(raw string) string {
	parts := strings.Split(raw, "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	if len(parts) >= 1 {
		return parts[0]
	}
	return ""
}

// treeFromClients arranges clients under one workspace per desktop, in
// client list order. Windows are visible when mapped on the current desktop
// or on all desktops. Clients without a pid stay in the tree but, as in sway
// snapshots, do not count as windows.
func treeFromClients(screen layout.Rect, current int, clients []x11Client) *layout.Node {
	root := &layout.Node{Kind: layout.KindRoot, Name: "root", Rect: screen}
	output := &layout.Node{Kind: layout.KindOutput, Name: "x11", Rect: screen}
	root.Nodes = []*layout.Node{output}

	workspaces := make(map[int]*layout.Node)
	var order []int
	for _, c := range clients {
		desktop := c.Desktop
		if desktop == stickyDesktop {
			desktop = current
		}
		ws, ok := workspaces[desktop]
		if !ok {
			ws = &layout.Node{Kind: layout.KindWorkspace, Name: strconv.Itoa(desktop + 1), Rect: screen}
			workspaces[desktop] = ws
			order = append(order, desktop)
		}

		ws.Nodes = append(ws.Nodes, &layout.Node{
			ID:         int64(c.ID),
			Kind:       layout.KindContainer,
			Rect:       c.Frame,
			WindowRect: layout.Rect{Width: c.Frame.Width, Height: c.Frame.Height},
			PID:        c.PID,
			Visible:    c.Mapped && desktop == current,
			Name:       c.Title,
			Class:      c.Class,
		})
	}

	sort.Ints(order)
	for _, d := range order {
		output.Nodes = append(output.Nodes, workspaces[d])
	}
	return root
}
