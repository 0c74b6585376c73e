package classifier

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Type represents the classifier variant to instantiate.
type Type string

const (
	// TypeChroma selects the color-channel dominance heuristic.
	TypeChroma Type = "chroma"
	// TypeRemote selects the remote model-inference variant.
	TypeRemote Type = "remote"
)

// ErrEndpointRequired is returned when the remote variant is requested
// without an inference endpoint.
var ErrEndpointRequired = errors.New("inference endpoint is required for remote classifier")

// Config holds configuration for creating a classifier.
type Config struct {
	Type        Type         // Variant to create
	Endpoint    string       // Inference endpoint (used by the remote variant)
	RegionCount int          // Catalog size (bounds the heuristic's random branch)
	Logger      *slog.Logger // Logger for the classifier
}

// New creates a classifier based on the provided configuration. The
// factory keeps variant selection out of the orchestrator: both
// variants satisfy the same contract and the pipeline never learns
// which one is installed.
func New(config Config) (Classifier, error) {
	switch config.Type {
	case TypeChroma:
		return NewChromaClassifier(config.RegionCount, config.Logger), nil
	case TypeRemote:
		if config.Endpoint == "" {
			return nil, ErrEndpointRequired
		}
		const timeout = 30
		client := &http.Client{Timeout: timeout * time.Second}
		return NewRemoteClassifier(client, config.Endpoint, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported classifier type: %s", config.Type)
	}
}
