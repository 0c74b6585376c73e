// Package classifier maps image feature tensors to region classes.
// Two interface-compatible variants exist: a declared color-channel
// heuristic standing in for a trained geolocation model, and a client
// for a remote inference service. The orchestrator reduces the raw
// class into the region catalog uniformly for both, so the variants
// stay swappable behind one contract.
package classifier

import (
	"context"

	"github.com/UnknownOlympus/pinpoint/internal/features"
)

// Classifier is the single contract both variants implement: it turns a
// normalized feature tensor into a raw class index and a confidence
// score in [0, 1]. The class index may exceed the region catalog size;
// reducing it into the catalog is the caller's job.
type Classifier interface {
	Classify(ctx context.Context, tensor *features.Tensor) (int, float64, error)
}
