package classifier

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/UnknownOlympus/pinpoint/internal/features"
)

// Region classes chosen by channel dominance. The values line up with
// the continental catalog: green-heavy images lean North America,
// red-heavy Asia, blue-heavy Australia.
const (
	classGreenDominant = 0
	classRedDominant   = 4
	classBlueDominant  = 5
)

// Confidence scoring constants: the score starts at the base and grows
// with channel spread, capped at the maximum.
const (
	baseConfidence = 0.3
	maxConfidence  = 0.7
	spreadGain     = 2.0
)

// ChromaClassifier is the declared heuristic placeholder for a trained
// geolocation model. It classifies by color-channel dominance and must
// be read as a stand-in: the contract, not the policy, is the part a
// real model later replaces.
type ChromaClassifier struct {
	regionCount int
	log         *slog.Logger
}

// NewChromaClassifier creates the heuristic classifier. regionCount
// bounds the random class picked for perfectly balanced images.
func NewChromaClassifier(regionCount int, log *slog.Logger) *ChromaClassifier {
	return &ChromaClassifier{regionCount: regionCount, log: log}
}

// Classify picks a class by channel dominance: a strictly greatest
// green channel selects class 0, else a strictly greatest red channel
// class 4, else a strictly greatest blue channel class 5. When no
// channel strictly dominates the class is uniform over the catalog.
// Confidence is min(0.7, 0.3 + 2*maxPairwiseChannelDifference), which
// lands near 0.3 on the balanced branch.
func (cc *ChromaClassifier) Classify(ctx context.Context, tensor *features.Tensor) (int, float64, error) {
	red, green, blue := tensor.ChannelMeans()

	var class int
	switch {
	case green > red && green > blue:
		class = classGreenDominant
	case red > green && red > blue:
		class = classRedDominant
	case blue > red && blue > green:
		class = classBlueDominant
	default:
		class = rand.IntN(cc.regionCount)
		cc.log.DebugContext(ctx, "Balanced channels, picked random class", "class", class)
	}

	spread := math.Max(math.Abs(red-green), math.Max(math.Abs(red-blue), math.Abs(green-blue)))
	confidence := math.Min(maxConfidence, baseConfidence+spreadGain*spread)

	cc.log.DebugContext(ctx, "Chroma classification",
		"red", red, "green", green, "blue", blue, "class", class, "confidence", confidence)

	return class, confidence, nil
}
