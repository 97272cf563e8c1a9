package vision

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
)

// thumbSize is the side length scans are downscaled to before
// averaging; the heuristic only needs the overall color.
const thumbSize = 64

// ColorHeuristic classifies a scan by its mean RGB color:
// dark saturated red reads as liver, brighter red as intestine, and
// bright near-gray as bone. Everything else is Unknown.
type ColorHeuristic struct{}

// NewColorHeuristic creates the standard color-mean classifier
func NewColorHeuristic() *ColorHeuristic {
	return &ColorHeuristic{}
}

func (h *ColorHeuristic) Classify(img image.Image) string {
	if img == nil {
		return config.UnknownTissue
	}

	r, g, b := meanRGB(scaleDown(img))
	mean := (r + g + b) / 3

	switch {
	case r > g*1.5 && r > b*1.5 && mean < 100:
		return "Liver"
	case r > g && r > b && mean > 100:
		return "Intestine"
	case mean > 150 && maxChannel(r, g, b)-minChannel(r, g, b) < 30:
		return "Bone"
	}
	return config.UnknownTissue
}

// scaleDown shrinks large scans so averaging stays cheap
func scaleDown(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= thumbSize && bounds.Dy() <= thumbSize {
		return img
	}
	thumb := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
	draw.NearestNeighbor.Scale(thumb, thumb.Bounds(), img, bounds, draw.Src, nil)
	return thumb
}

// meanRGB averages the image's channels on the 0-255 scale
func meanRGB(img image.Image) (float64, float64, float64) {
	bounds := img.Bounds()
	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return 0, 0, 0
	}

	var sumR, sumG, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sumR += float64(r >> 8)
			sumG += float64(g >> 8)
			sumB += float64(b >> 8)
		}
	}
	return sumR / pixels, sumG / pixels, sumB / pixels
}

func maxChannel(r, g, b float64) float64 {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}

func minChannel(r, g, b float64) float64 {
	m := r
	if g < m {
		m = g
	}
	if b < m {
		m = b
	}
	return m
}
