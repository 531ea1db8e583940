package tray

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"runtime"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"motion-overlay/src/opacity"
)

// Embedded SVG icon data. currentColor is replaced with the state color.
//
//go:embed icon.svg
var IconSVG string

const iconSize = 32

var (
	activeColor   = color.RGBA{R: opacity.Color.R, G: opacity.Color.G, B: opacity.Color.B, A: 0xff}
	inactiveColor = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
)

// renderIcon rasterizes the tray SVG in the given color.
func renderIcon(svgContent string, size int, iconColor color.Color) (image.Image, error) {
	r, g, b, _ := iconColor.RGBA()
	hexColor := fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	svgContent = strings.ReplaceAll(svgContent, "currentColor", hexColor)

	icon, err := oksvg.ReadIconStream(strings.NewReader(svgContent))
	if err != nil {
		return nil, fmt.Errorf("tray: parse icon: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	icon.SetTarget(0, 0, float64(size), float64(size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// iconBytes returns the icon encoded for systray: PNG, wrapped in an ICO
// container on Windows.
func iconBytes(active bool) []byte {
	c := inactiveColor
	if active {
		c = activeColor
	}
	img, err := renderIcon(IconSVG, iconSize, c)
	if err != nil {
		log.Printf("%v", err)
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("tray: encode icon: %v", err)
		return nil
	}
	if runtime.GOOS == "windows" {
		return wrapICO(buf.Bytes(), iconSize)
	}
	return buf.Bytes()
}

// wrapICO builds a single-image ICO file around PNG data.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen = 6 + 16
	var buf bytes.Buffer
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16
	}{0, 1, 1})
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{dim, dim, 0, 0, 1, 32, uint32(len(pngData)), headerLen})
	buf.Write(pngData)
	return buf.Bytes()
}
