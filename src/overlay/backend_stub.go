//go:build !windows

package overlay

import "errors"

func newWindowsBackend() (Backend, error) {
	return nil, errors.New("overlay: windows backend is only available on Windows")
}
