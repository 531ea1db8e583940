//go:build windows

package overlay

import (
	"errors"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"motion-overlay/src/opacity"
)

const lwaAlpha = 0x00000002

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	gdi32                          = windows.NewLazySystemDLL("gdi32.dll")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procFillRect                   = user32.NewProc("FillRect")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
)

// brushes maps live overlay windows to their background brush.
var (
	brushMu sync.Mutex
	brushes = map[win.HWND]uintptr{}
)

type windowsBackend struct{}

func newWindowsBackend() (Backend, error) { return windowsBackend{}, nil }

func (windowsBackend) Name() string { return BackendWindows }

// Open starts a dedicated OS thread that owns the window and its message loop.
func (windowsBackend) Open(alpha uint8, rgb opacity.RGB) (Handle, error) {
	h := &windowsHandle{ready: make(chan error, 1), done: make(chan struct{})}
	go h.run(alpha, rgb)
	if err := <-h.ready; err != nil {
		return nil, err
	}
	return h, nil
}

type windowsHandle struct {
	hwnd  win.HWND
	color opacity.RGB
	ready chan error
	done  chan struct{}
}

func (h *windowsHandle) run(alpha uint8, rgb opacity.RGB) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("MotionOverlay_%d", time.Now().UnixNano()))
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wc) == 0 {
		h.ready <- errors.New("register window class failed")
		return
	}
	defer win.UnregisterClass(className)

	area := Coverage()
	if area.Empty() {
		area = image.Rect(
			int(win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)),
			int(win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)),
			int(win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)+win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)),
			int(win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)+win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)),
		)
	}

	hwnd := win.CreateWindowEx(
		win.WS_EX_LAYERED|win.WS_EX_TRANSPARENT|win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_NOACTIVATE,
		className, nil, win.WS_POPUP,
		int32(area.Min.X), int32(area.Min.Y), int32(area.Dx()), int32(area.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		h.ready <- errors.New("create overlay window failed")
		return
	}
	h.hwnd = hwnd
	h.color = rgb
	setBrush(hwnd, rgb)
	if err := setLayeredAlpha(hwnd, alpha); err != nil {
		win.DestroyWindow(hwnd)
		h.ready <- err
		return
	}
	win.ShowWindow(hwnd, win.SW_SHOWNOACTIVATE)
	win.UpdateWindow(hwnd)
	log.Printf("overlay: windows hwnd %v covering %v", hwnd, area)
	h.ready <- nil

	var msg win.MSG
	for win.GetMessage(&msg, 0, 0, 0) > 0 {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func (h *windowsHandle) SetColor(alpha uint8, rgb opacity.RGB) error {
	if rgb != h.color {
		setBrush(h.hwnd, rgb)
		win.InvalidateRect(h.hwnd, nil, true)
		h.color = rgb
	}
	return setLayeredAlpha(h.hwnd, alpha)
}

func (h *windowsHandle) Close() error {
	if win.PostMessage(h.hwnd, win.WM_CLOSE, 0, 0) == 0 {
		return errors.New("post WM_CLOSE failed")
	}
	<-h.done
	return nil
}

func setLayeredAlpha(hwnd win.HWND, alpha uint8) error {
	ret, _, err := procSetLayeredWindowAttributes.Call(uintptr(hwnd), 0, uintptr(alpha), lwaAlpha)
	if ret == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes: %v", err)
	}
	return nil
}

func setBrush(hwnd win.HWND, rgb opacity.RGB) {
	colorRef := uintptr(rgb.R) | uintptr(rgb.G)<<8 | uintptr(rgb.B)<<16
	brush, _, _ := procCreateSolidBrush.Call(colorRef)
	brushMu.Lock()
	old := brushes[hwnd]
	brushes[hwnd] = brush
	brushMu.Unlock()
	if old != 0 {
		win.DeleteObject(win.HGDIOBJ(old))
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_ERASEBKGND:
		brushMu.Lock()
		brush := brushes[hwnd]
		brushMu.Unlock()
		var rc win.RECT
		win.GetClientRect(hwnd, &rc)
		procFillRect.Call(wParam, uintptr(unsafe.Pointer(&rc)), brush)
		return 1
	case win.WM_NCHITTEST:
		return ^uintptr(0) // HTTRANSPARENT
	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		brushMu.Lock()
		brush := brushes[hwnd]
		delete(brushes, hwnd)
		brushMu.Unlock()
		if brush != 0 {
			win.DeleteObject(win.HGDIOBJ(brush))
		}
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
