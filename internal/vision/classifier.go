// Package vision maps a tissue scan image to a tissue name. The
// classifier is a pluggable capability: the simulator and tuner never
// depend on how the label was produced, and the surgeon can always
// override it.
package vision

import (
	"bytes"
	"image"

	// Registered decoders for tissue scan uploads
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/GripSim-25-26J-441/control-core/pkg/config"
)

// Classifier labels a tissue scan. Implementations must not fail:
// anything unrecognizable is labelled as the Unknown tissue.
type Classifier interface {
	// Classify returns a tissue name for the image. A nil image
	// yields the Unknown label.
	Classify(img image.Image) string
}

// Decode decodes an uploaded scan in any registered format
// (PNG, JPEG, GIF, BMP)
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// ClassifyBytes decodes and classifies an uploaded scan, degrading to
// the Unknown tissue on any decode failure. Classification is a
// best-effort hint, never an error.
func ClassifyBytes(c Classifier, data []byte) string {
	img, err := Decode(data)
	if err != nil {
		return config.UnknownTissue
	}
	return c.Classify(img)
}
