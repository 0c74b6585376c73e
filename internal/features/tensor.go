// Package features normalizes decoded images into the fixed-shape
// tensors consumed by the region classifier. It is a pure normalization
// boundary: no geographic reasoning happens here.
package features

// channels is the fixed number of color channels in a feature tensor.
const channels = 3

// Tensor is a normalized image representation of shape (1, H, W, 3):
// a single-item batch of height-by-width RGB values scaled into [0, 1].
// Data is laid out row-major, channels interleaved.
type Tensor struct {
	Height int
	Width  int
	Data   []float32
}

// At returns the channel value at the given row, column and channel.
func (t *Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*channels+c]
}

// ChannelMeans returns the mean value of the red, green and blue
// channels across the entire tensor, ignoring the batch dimension.
func (t *Tensor) ChannelMeans() (float64, float64, float64) {
	var sums [channels]float64
	for i, v := range t.Data {
		sums[i%channels] += float64(v)
	}

	n := float64(t.Height * t.Width)
	if n == 0 {
		return 0, 0, 0
	}

	return sums[0] / n, sums[1] / n, sums[2] / n
}
