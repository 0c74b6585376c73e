package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/classifier"
	"github.com/UnknownOlympus/pinpoint/internal/features"
	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/geomath"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/regions"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
)

const metersPerKilometer = 1000.0

// ImageSource loads an image from disk and turns it into the tensor the
// classifier consumes.
type ImageSource interface {
	LoadImage(path string) error
	Preprocess(height, width int) (*features.Tensor, error)
}

// GroundTruthSource yields the actual coordinates recorded in an image,
// when present.
type GroundTruthSource interface {
	Coordinates(path string) (*models.Coordinates, bool, error)
}

// Evaluator runs the full prediction pipeline for a single image:
// feature extraction, region classification, reverse geocoding and,
// when requested, verification against the embedded GPS coordinates.
type Evaluator struct {
	log          *slog.Logger          // Logger for pipeline activities
	images       ImageSource           // Loads and preprocesses input images
	classifier   classifier.Classifier // Predicts a region class from image features
	catalog      *regions.Catalog      // Maps class ids onto known regions
	provider     geocoding.Provider    // Reverse geocoder for coordinates
	providerName string                // Name of the provider for metrics labeling
	truth        GroundTruthSource     // Source of actual coordinates for verification
	repo         repository.Interface  // Optional run history store, may be nil
	metrics      *metrics.Metrics      // Metrics for tracking pipeline performance
	targetHeight int                   // Classifier input height
	targetWidth  int                   // Classifier input width
}

// NewEvaluator creates a new instance of Evaluator. The repository may
// be nil, in which case runs are not persisted.
func NewEvaluator(
	log *slog.Logger,
	images ImageSource,
	cls classifier.Classifier,
	catalog *regions.Catalog,
	provider geocoding.Provider,
	providerName string,
	truth GroundTruthSource,
	repo repository.Interface,
	mts *metrics.Metrics,
	targetHeight, targetWidth int,
) *Evaluator {
	return &Evaluator{
		log:          log,
		images:       images,
		classifier:   cls,
		catalog:      catalog,
		provider:     provider,
		providerName: providerName,
		truth:        truth,
		repo:         repo,
		metrics:      mts,
		targetHeight: targetHeight,
		targetWidth:  targetWidth,
	}
}

// Run evaluates a single image. When verify is set and the image carries
// GPS coordinates, the result includes the actual location and the
// distance between prediction and truth. Images without GPS data yield a
// result with a nil Verification rather than an error.
func (ev *Evaluator) Run(ctx context.Context, imagePath string, verify bool) (*models.Run, error) {
	run, err := ev.evaluate(ctx, imagePath, verify)
	if err != nil {
		ev.metrics.PredictionsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	ev.metrics.PredictionsTotal.WithLabelValues("success").Inc()

	return run, nil
}

func (ev *Evaluator) evaluate(ctx context.Context, imagePath string, verify bool) (*models.Run, error) {
	if err := ev.images.LoadImage(imagePath); err != nil {
		return nil, err
	}

	tensor, err := ev.images.Preprocess(ev.targetHeight, ev.targetWidth)
	if err != nil {
		return nil, err
	}

	class, confidence, err := ev.classifier.Classify(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("failed to classify image: %w", err)
	}
	ev.metrics.ClassifierConfidence.Observe(confidence)

	region := ev.catalog.Reduce(class)
	ev.log.DebugContext(ctx, "Image classified",
		"image", imagePath, "class", class, "region", region.Name, "confidence", confidence)

	predictedAddr, err := ev.reverseGeocode(ctx, region.Center)
	if err != nil {
		return nil, err
	}

	run := &models.Run{
		ImagePath: imagePath,
		Prediction: models.Prediction{
			Coordinates: region.Center,
			RegionName:  region.Name,
			Confidence:  confidence,
			Class:       class,
		},
		Location:  geocoding.FormatLocation(predictedAddr),
		CreatedAt: time.Now(),
	}

	if verify {
		verification, verifyErr := ev.verify(ctx, imagePath, region.Center)
		if verifyErr != nil {
			return nil, verifyErr
		}
		run.Verification = verification
	}

	if ev.repo != nil {
		if _, saveErr := ev.repo.SaveRun(ctx, *run); saveErr != nil {
			ev.log.ErrorContext(ctx, "Failed to save run to history", "image", imagePath, "error", saveErr)
		}
	}

	return run, nil
}

// verify reads the actual coordinates out of the image and measures how
// far the prediction landed from them. A nil result means the image has
// no usable GPS data.
func (ev *Evaluator) verify(
	ctx context.Context,
	imagePath string,
	predicted models.Coordinates,
) (*models.Verification, error) {
	actual, found, err := ev.truth.Coordinates(imagePath)
	if err != nil {
		return nil, err
	}
	if !found {
		ev.log.InfoContext(ctx, "No GPS data found in image, skipping verification", "image", imagePath)
		return nil, nil //nolint:nilnil // missing GPS data is an expected outcome, not an error
	}

	actualAddr, err := ev.reverseGeocode(ctx, *actual)
	if err != nil {
		return nil, err
	}

	distance := geomath.DistanceKm(predicted, *actual)
	ev.metrics.VerificationDistances.Observe(distance)

	return &models.Verification{
		Coordinates: *actual,
		Location:    geocoding.FormatLocation(actualAddr),
		DistanceKm:  distance,
		Tier:        models.TierFor(distance),
	}, nil
}

// reverseGeocode resolves coordinates into an address, recording the
// request duration and API errors.
func (ev *Evaluator) reverseGeocode(ctx context.Context, coords models.Coordinates) (*models.Address, error) {
	startTime := time.Now()
	addr, err := ev.provider.ReverseGeocode(ctx, coords)
	ev.metrics.GeocodeSeconds.WithLabelValues(ev.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		ev.metrics.GeocodeAPIErrors.Inc()
		return nil, fmt.Errorf("failed to reverse geocode coordinates: %w", err)
	}

	return addr, nil
}

// FormatDistance renders a distance for display, switching to meters
// below one kilometer.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*metersPerKilometer)
	}

	return fmt.Sprintf("%.1f km", km)
}
