package features

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Default classifier input dimensions.
const (
	DefaultTargetHeight = 224
	DefaultTargetWidth  = 224
)

// ErrNoImage is returned when preprocessing is requested before an
// image has been loaded.
var ErrNoImage = errors.New("no image loaded")

// maxChannelValue is the native 8-bit channel range the normalization
// scales out of.
const maxChannelValue = 255.0

// Extractor loads raster images and turns them into feature tensors.
type Extractor struct {
	img image.Image
	log *slog.Logger
}

// NewExtractor creates an image feature extractor.
func NewExtractor(log *slog.Logger) *Extractor {
	return &Extractor{log: log}
}

// LoadImage decodes the image at path. Any registered raster format is
// accepted; a decode failure is a fatal input error.
func (e *Extractor) LoadImage(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	bounds := img.Bounds()
	e.log.Debug("Image loaded", "path", path, "width", bounds.Dx(), "height", bounds.Dy())
	e.img = img

	return nil
}

// Preprocess resizes the loaded image to the target dimensions, forces
// three color channels (alpha dropped, grayscale expanded) and scales
// every channel into [0, 1]. The resulting tensor always has the shape
// (1, height, width, 3) the classifier contract assumes.
func (e *Extractor) Preprocess(height, width int) (*Tensor, error) {
	if e.img == nil {
		return nil, ErrNoImage
	}

	resized := imaging.Resize(e.img, width, height, imaging.Lanczos)

	tensor := &Tensor{
		Height: height,
		Width:  width,
		Data:   make([]float32, height*width*channels),
	}

	i := 0
	for y := range height {
		for x := range width {
			offset := resized.PixOffset(x, y)
			// NRGBA pixel layout is R, G, B, A; the alpha byte is dropped.
			tensor.Data[i] = float32(resized.Pix[offset]) / maxChannelValue
			tensor.Data[i+1] = float32(resized.Pix[offset+1]) / maxChannelValue
			tensor.Data[i+2] = float32(resized.Pix[offset+2]) / maxChannelValue
			i += channels
		}
	}

	return tensor, nil
}
