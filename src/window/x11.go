package window

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"screenotate/src/geometry"
)

// Layers assigned to EWMH window types. Only layerNormal matches the
// default resolver layer.
const (
	layerDesktop = -1
	layerNormal  = 0
	layerOther   = 10
	layerDock    = 20
)

var x11AtomNames = []string{
	"_NET_CLIENT_LIST_STACKING",
	"_NET_WM_NAME",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_NORMAL",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_UTILITY",
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_STATE",
	"_NET_WM_STATE_HIDDEN",
}

// X11Lister lists client windows through an EWMH-compliant window manager.
type X11Lister struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewX11Lister opens a connection to the display named by $DISPLAY.
func NewX11Lister() (*X11Lister, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}

	l := &X11Lister{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(x11AtomNames)),
	}
	for _, name := range x11AtomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("intern atom %s: %w", name, err)
		}
		l.atoms[name] = reply.Atom
	}
	return l, nil
}

func (l *X11Lister) Close() error {
	l.conn.Close()
	return nil
}

// ListOnScreen reads the stacking order (bottom to top) and reverses it so
// the caller receives windows front to back. Hidden (minimized) windows are
// skipped.
func (l *X11Lister) ListOnScreen(ctx context.Context) ([]Info, error) {
	stacking, err := l.windowList(l.root, l.atoms["_NET_CLIENT_LIST_STACKING"])
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(stacking))
	for i := len(stacking) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := stacking[i]
		if l.isHidden(w) {
			continue
		}
		bounds, err := l.bounds(w)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Bounds: bounds,
			Layer:  l.layer(w),
			Title:  String(l.title(w)),
			Owner:  String(l.owner(w)),
		})
	}
	return infos, nil
}

// PointerLocation returns the pointer position in global coordinates.
func (l *X11Lister) PointerLocation(ctx context.Context) (geometry.Point, error) {
	reply, err := xproto.QueryPointer(l.conn, l.root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("query pointer: %w", err)
	}
	return geometry.Point{X: float64(reply.RootX), Y: float64(reply.RootY)}, nil
}

func (l *X11Lister) property(w xproto.Window, atom xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(l.conn, false, w, atom, xproto.GetPropertyTypeAny, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (l *X11Lister) windowList(w xproto.Window, atom xproto.Atom) ([]xproto.Window, error) {
	data, err := l.property(w, atom, 4096)
	if err != nil {
		return nil, fmt.Errorf("read client list: %w", err)
	}
	return decodeWindows(data), nil
}

func decodeWindows(data []byte) []xproto.Window {
	out := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, xproto.Window(binary.LittleEndian.Uint32(data[i:])))
	}
	return out
}

func decodeAtoms(data []byte) []xproto.Atom {
	out := make([]xproto.Atom, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		out = append(out, xproto.Atom(binary.LittleEndian.Uint32(data[i:])))
	}
	return out
}

func (l *X11Lister) bounds(w xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(l.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	abs, err := xproto.TranslateCoordinates(l.conn, w, l.root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.NewRect(float64(abs.DstX), float64(abs.DstY), float64(geom.Width), float64(geom.Height)), nil
}

func (l *X11Lister) isHidden(w xproto.Window) bool {
	data, err := l.property(w, l.atoms["_NET_WM_STATE"], 64)
	if err != nil {
		return false
	}
	for _, a := range decodeAtoms(data) {
		if a == l.atoms["_NET_WM_STATE_HIDDEN"] {
			return true
		}
	}
	return false
}

func (l *X11Lister) layer(w xproto.Window) int {
	data, err := l.property(w, l.atoms["_NET_WM_WINDOW_TYPE"], 64)
	if err != nil || len(data) < 4 {
		// EWMH: managed windows without a type are treated as normal.
		return layerNormal
	}
	return layerForType(decodeAtoms(data)[0], l.atoms)
}

func layerForType(t xproto.Atom, atoms map[string]xproto.Atom) int {
	switch t {
	case atoms["_NET_WM_WINDOW_TYPE_NORMAL"], atoms["_NET_WM_WINDOW_TYPE_DIALOG"], atoms["_NET_WM_WINDOW_TYPE_UTILITY"]:
		return layerNormal
	case atoms["_NET_WM_WINDOW_TYPE_DESKTOP"]:
		return layerDesktop
	case atoms["_NET_WM_WINDOW_TYPE_DOCK"]:
		return layerDock
	default:
		return layerOther
	}
}

func (l *X11Lister) title(w xproto.Window) string {
	if data, err := l.property(w, l.atoms["_NET_WM_NAME"], 256); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	if data, err := l.property(w, xproto.AtomWmName, 256); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

// owner returns the application name for the WM_CLASS class part, with
// known browsers branded ("Google-chrome" becomes "Google Chrome").
func (l *X11Lister) owner(w xproto.Window) string {
	data, err := l.property(w, xproto.AtomWmClass, 256)
	if err != nil || len(data) == 0 {
		return ""
	}
	return ApplicationName(parseWMClass(data))
}

func parseWMClass(data []byte) string {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}
