package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/UnknownOlympus/pinpoint/internal/features"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrEmptyLogits is returned when the inference service responds
// without any logits.
var ErrEmptyLogits = errors.New("inference service returned no logits")

// inferenceRequest is the JSON payload sent to the inference service.
type inferenceRequest struct {
	Height int       `json:"height"`
	Width  int       `json:"width"`
	Data   []float32 `json:"data"`
}

// inferenceResponse is the JSON response from the inference service.
type inferenceResponse struct {
	Logits []float64 `json:"logits"`
}

// RemoteClassifier runs image-classification inference on an external
// model-serving endpoint. The arg-max logit becomes the raw class and
// the softmax probability of that class the confidence, so its output
// shape matches the heuristic variant exactly.
type RemoteClassifier struct {
	client   HTTPClient   // HTTP client for making requests
	endpoint string       // Inference service prediction endpoint
	log      *slog.Logger // Logger for logging operations
}

// NewRemoteClassifier creates a classifier backed by a model-serving
// endpoint.
func NewRemoteClassifier(client HTTPClient, endpoint string, log *slog.Logger) *RemoteClassifier {
	return &RemoteClassifier{client: client, endpoint: endpoint, log: log}
}

// Classify posts the tensor to the inference service and derives the
// class and confidence from the returned logits.
func (rc *RemoteClassifier) Classify(ctx context.Context, tensor *features.Tensor) (int, float64, error) {
	payload, err := json.Marshal(inferenceRequest{
		Height: tensor.Height,
		Width:  tensor.Width,
		Data:   tensor.Data,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rc.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to execute inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		rc.log.ErrorContext(ctx, "Inference service error", "status", resp.StatusCode, "body", string(body))
		return 0, 0, fmt.Errorf("inference service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result inferenceResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("failed to decode inference response: %w", err)
	}

	if len(result.Logits) == 0 {
		return 0, 0, ErrEmptyLogits
	}

	class := argmax(result.Logits)
	confidence := softmaxAt(result.Logits, class)

	rc.log.DebugContext(ctx, "Remote classification", "class", class, "confidence", confidence)

	return class, confidence, nil
}

// argmax returns the index of the greatest logit.
func argmax(logits []float64) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}

// softmaxAt returns the softmax probability of the logit at index idx.
// The maximum logit is subtracted first for numerical stability.
func softmaxAt(logits []float64, idx int) float64 {
	maxLogit := logits[argmax(logits)]

	var sum float64
	for _, v := range logits {
		sum += math.Exp(v - maxLogit)
	}

	return math.Exp(logits[idx]-maxLogit) / sum
}
