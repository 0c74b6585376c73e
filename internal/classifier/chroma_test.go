package classifier_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/pinpoint/internal/classifier"
	"github.com/UnknownOlympus/pinpoint/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogSize = 6

// solidTensor builds a 2x2 tensor whose channel means are exactly the
// given values.
func solidTensor(r, g, b float32) *features.Tensor {
	tensor := &features.Tensor{Height: 2, Width: 2, Data: make([]float32, 2*2*3)}
	for i := 0; i < len(tensor.Data); i += 3 {
		tensor.Data[i] = r
		tensor.Data[i+1] = g
		tensor.Data[i+2] = b
	}
	return tensor
}

func TestChromaClassifier_ChannelDominance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		r, g, b   float32
		wantClass int
	}{
		{name: "green dominant picks north america", r: 0.3, g: 0.8, b: 0.3, wantClass: 0},
		{name: "red dominant picks asia", r: 0.8, g: 0.3, b: 0.3, wantClass: 4},
		{name: "blue dominant picks australia", r: 0.3, g: 0.3, b: 0.8, wantClass: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cc := classifier.NewChromaClassifier(catalogSize, slog.Default())
			class, confidence, err := cc.Classify(t.Context(), solidTensor(tc.r, tc.g, tc.b))

			require.NoError(t, err)
			assert.Equal(t, tc.wantClass, class)
			// Spread of 0.5 saturates the confidence cap.
			assert.InDelta(t, 0.7, confidence, 1e-9)
		})
	}
}

func TestChromaClassifier_BalancedChannels(t *testing.T) {
	t.Parallel()

	cc := classifier.NewChromaClassifier(catalogSize, slog.Default())

	// The tie branch is random over the catalog; only assert a valid
	// class and a near-base confidence.
	for range 20 {
		class, confidence, err := cc.Classify(t.Context(), solidTensor(0.5, 0.5, 0.5))

		require.NoError(t, err)
		assert.GreaterOrEqual(t, class, 0)
		assert.Less(t, class, catalogSize)
		assert.InDelta(t, 0.3, confidence, 1e-9)
	}
}

func TestChromaClassifier_ConfidenceScalesWithSpread(t *testing.T) {
	t.Parallel()

	cc := classifier.NewChromaClassifier(catalogSize, slog.Default())

	_, small, err := cc.Classify(t.Context(), solidTensor(0.50, 0.55, 0.50))
	require.NoError(t, err)
	_, large, err := cc.Classify(t.Context(), solidTensor(0.30, 0.45, 0.30))
	require.NoError(t, err)

	assert.InDelta(t, 0.4, small, 0.001)
	assert.InDelta(t, 0.6, large, 0.001)
	assert.Less(t, small, large)
}
