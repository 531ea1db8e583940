package overlay

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"

	"motion-overlay/src/opacity"
)

const opacityAtomName = "_NET_WM_WINDOW_OPACITY"

var errNoCompositor = errors.New("no compositing manager running")

type x11Backend struct {
	display string
}

func newX11Backend(display string) *x11Backend { return &x11Backend{display: display} }

func (b *x11Backend) Name() string { return BackendX11 }

// Open creates an override-redirect window over the whole root, makes it
// ignore input through an empty XFixes input region, and leaves
// translucency to the compositor via _NET_WM_WINDOW_OPACITY.
func (b *x11Backend) Open(alpha uint8, rgb opacity.RGB) (Handle, error) {
	conn, err := xgb.NewConnDisplay(b.display)
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	h, err := openX11Window(conn, alpha, rgb)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

func openX11Window(conn *xgb.Conn, alpha uint8, rgb opacity.RGB) (*x11Handle, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)

	// Without a compositor the window would paint fully opaque.
	cmAtom, err := internAtom(conn, fmt.Sprintf("_NET_WM_CM_S%d", conn.DefaultScreen))
	if err != nil {
		return nil, err
	}
	owner, err := xproto.GetSelectionOwner(conn, cmAtom).Reply()
	if err != nil {
		return nil, fmt.Errorf("query compositor: %w", err)
	}
	if owner.Owner == xproto.WindowNone {
		return nil, errNoCompositor
	}

	area := Coverage()
	if area.Empty() {
		area = image.Rect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels))
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, wid, screen.Root,
		int16(area.Min.X), int16(area.Min.Y), uint16(area.Dx()), uint16(area.Dy()), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{pixel(rgb), 1}).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	if err := passInput(conn, wid); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	opacityAtom, err := internAtom(conn, opacityAtomName)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	h := &x11Handle{conn: conn, wid: wid, opacityAtom: opacityAtom, color: rgb}
	if err := h.SetColor(alpha, rgb); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}
	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("map window: %w", err)
	}
	xproto.ConfigureWindow(conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	log.Printf("overlay: x11 window 0x%x covering %v", wid, area)
	return h, nil
}

// passInput installs an empty input region so pointer events fall through.
func passInput(conn *xgb.Conn, wid xproto.Window) error {
	if err := xfixes.Init(conn); err != nil {
		return fmt.Errorf("xfixes unavailable: %w", err)
	}
	if _, err := xfixes.QueryVersion(conn, 5, 0).Reply(); err != nil {
		return fmt.Errorf("xfixes version: %w", err)
	}
	region, err := xfixes.NewRegionId(conn)
	if err != nil {
		return fmt.Errorf("allocate region: %w", err)
	}
	if err := xfixes.CreateRegionChecked(conn, region, nil).Check(); err != nil {
		return fmt.Errorf("create region: %w", err)
	}
	defer xfixes.DestroyRegion(conn, region)
	if err := xfixes.SetWindowShapeRegionChecked(conn, wid, shape.SkInput, 0, 0, region).Check(); err != nil {
		return fmt.Errorf("set input shape: %w", err)
	}
	return nil
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

func pixel(rgb opacity.RGB) uint32 {
	return uint32(rgb.R)<<16 | uint32(rgb.G)<<8 | uint32(rgb.B)
}

type x11Handle struct {
	conn        *xgb.Conn
	wid         xproto.Window
	opacityAtom xproto.Atom
	color       opacity.RGB
}

func (h *x11Handle) SetColor(alpha uint8, rgb opacity.RGB) error {
	if rgb != h.color {
		if err := xproto.ChangeWindowAttributesChecked(h.conn, h.wid, xproto.CwBackPixel, []uint32{pixel(rgb)}).Check(); err != nil {
			return fmt.Errorf("change background: %w", err)
		}
		xproto.ClearArea(h.conn, false, h.wid, 0, 0, 0, 0)
		h.color = rgb
	}
	value := uint32(math.Round(float64(alpha) / 255 * math.MaxUint32))
	buf := make([]byte, 4)
	xgb.Put32(buf, value)
	return xproto.ChangePropertyChecked(h.conn, xproto.PropModeReplace, h.wid,
		h.opacityAtom, xproto.AtomCardinal, 32, 1, buf).Check()
}

func (h *x11Handle) Close() error {
	err := xproto.DestroyWindowChecked(h.conn, h.wid).Check()
	h.conn.Close()
	return err
}
