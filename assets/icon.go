package assets

import (
	_ "embed"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed corvid_icon.svg
var iconSVG string

// RenderIconSizes renders the embedded SVG icon at the sizes window
// managers commonly pick from, for GLFW SetIcon.
func RenderIconSizes() []image.Image {
	sizes := []int{16, 32, 48, 64, 128}
	var icons []image.Image

	for _, size := range sizes {
		if img := renderSVGToSize(iconSVG, size); img != nil {
			icons = append(icons, img)
		}
	}

	return icons
}

// renderSVGToSize rasterizes an SVG string into an RGBA image.
func renderSVGToSize(svgData string, size int) image.Image {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svgData))
	if err != nil {
		return nil
	}

	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	rasterizer := rasterx.NewDasher(size, size, scanner)
	icon.Draw(rasterizer, 1.0)

	return rgba
}
