package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnknownOlympus/pinpoint/internal/features"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/regions"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/UnknownOlympus/pinpoint/internal/service"
)

type stubImages struct {
	loadErr       error
	preprocessErr error
	tensor        *features.Tensor
}

func (s *stubImages) LoadImage(_ string) error { return s.loadErr }

func (s *stubImages) Preprocess(_, _ int) (*features.Tensor, error) {
	if s.preprocessErr != nil {
		return nil, s.preprocessErr
	}
	return s.tensor, nil
}

type stubClassifier struct {
	class      int
	confidence float64
	err        error
}

func (s *stubClassifier) Classify(_ context.Context, _ *features.Tensor) (int, float64, error) {
	return s.class, s.confidence, s.err
}

type stubProvider struct {
	addr   *models.Address
	err    error
	coords []models.Coordinates
}

func (s *stubProvider) ReverseGeocode(_ context.Context, coords models.Coordinates) (*models.Address, error) {
	s.coords = append(s.coords, coords)
	if s.err != nil {
		return nil, s.err
	}
	return s.addr, nil
}

type stubTruth struct {
	coords *models.Coordinates
	found  bool
	err    error
}

func (s *stubTruth) Coordinates(_ string) (*models.Coordinates, bool, error) {
	return s.coords, s.found, s.err
}

type stubRepo struct {
	saved []models.Run
	err   error
}

func (s *stubRepo) SaveRun(_ context.Context, run models.Run) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, run)
	return len(s.saved), nil
}

func (s *stubRepo) RecentRuns(_ context.Context, _ int) ([]models.Run, error) {
	return s.saved, nil
}

type evaluatorDeps struct {
	images     *stubImages
	classifier *stubClassifier
	provider   *stubProvider
	truth      *stubTruth
}

func defaultDeps() evaluatorDeps {
	return evaluatorDeps{
		images:     &stubImages{tensor: &features.Tensor{Height: 2, Width: 2, Data: make([]float32, 12)}},
		classifier: &stubClassifier{class: 2, confidence: 0.7},
		provider: &stubProvider{addr: &models.Address{
			City:    "Paris",
			State:   "Ile-de-France",
			Country: "France",
		}},
		truth: &stubTruth{},
	}
}

func newEvaluator(deps evaluatorDeps, repo *stubRepo) *service.Evaluator {
	logger := slog.Default()
	mts := metrics.NewMetrics(prometheus.NewRegistry())

	var history repository.Interface
	if repo != nil {
		history = repo
	}

	return service.NewEvaluator(
		logger, deps.images, deps.classifier, regions.Default(),
		deps.provider, "nominatim", deps.truth, history, mts,
		features.DefaultTargetHeight, features.DefaultTargetWidth,
	)
}

func TestEvaluatorRun(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("prediction without verification", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.NoError(t, err)
		assert.Equal(t, "/photos/eiffel.jpg", run.ImagePath)
		assert.Equal(t, 2, run.Prediction.Class)
		assert.Equal(t, "Europe", run.Prediction.RegionName)
		assert.InDelta(t, 48.8566, run.Prediction.Coordinates.Latitude, 1e-9)
		assert.Equal(t, "Paris, Ile-de-France, France", run.Location)
		assert.Nil(t, run.Verification)
		assert.Len(t, deps.provider.coords, 1)
	})

	t.Run("class beyond catalog wraps around", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.classifier.class = 8
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.NoError(t, err)
		assert.Equal(t, "Europe", run.Prediction.RegionName)
		assert.Equal(t, 8, run.Prediction.Class)
	})

	t.Run("verification with GPS data", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.truth.coords = &models.Coordinates{Latitude: 48.86, Longitude: 2.35}
		deps.truth.found = true
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", true)

		require.NoError(t, err)
		require.NotNil(t, run.Verification)
		assert.Equal(t, models.TierVeryClose, run.Verification.Tier)
		assert.Less(t, run.Verification.DistanceKm, 1.0)
		assert.Equal(t, "Paris, Ile-de-France, France", run.Verification.Location)
		assert.Len(t, deps.provider.coords, 2)
		assert.InDelta(t, 48.86, deps.provider.coords[1].Latitude, 1e-9)
	})

	t.Run("verification without GPS data is not an error", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.truth.found = false
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/scan.png", true)

		require.NoError(t, err)
		assert.Nil(t, run.Verification)
		assert.Len(t, deps.provider.coords, 1)
	})

	t.Run("image load failure aborts the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.images.loadErr = assert.AnError
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/missing.jpg", false)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, run)
		assert.Empty(t, deps.provider.coords)
	})

	t.Run("preprocess failure aborts the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.images.preprocessErr = assert.AnError
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, run)
	})

	t.Run("classifier failure aborts the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.classifier.err = assert.AnError
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to classify image")
		assert.Nil(t, run)
	})

	t.Run("geocoding failure aborts the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.provider.err = assert.AnError
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to reverse geocode coordinates")
		assert.Nil(t, run)
	})

	t.Run("ground truth failure aborts the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		deps.truth.err = assert.AnError
		evaluator := newEvaluator(deps, nil)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", true)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, run)
	})

	t.Run("run is saved to history when configured", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		repo := &stubRepo{}
		evaluator := newEvaluator(deps, repo)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.NoError(t, err)
		require.Len(t, repo.saved, 1)
		assert.Equal(t, run.ImagePath, repo.saved[0].ImagePath)
		assert.Equal(t, run.Location, repo.saved[0].Location)
	})

	t.Run("history save failure does not fail the run", func(t *testing.T) {
		t.Parallel()
		deps := defaultDeps()
		repo := &stubRepo{err: assert.AnError}
		evaluator := newEvaluator(deps, repo)

		run, err := evaluator.Run(ctx, "/photos/eiffel.jpg", false)

		require.NoError(t, err)
		assert.NotNil(t, run)
	})
}

func TestFormatDistance(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		km       float64
		expected string
	}{
		{name: "sub-kilometer distances are shown in meters", km: 0.4, expected: "400 m"},
		{name: "zero distance", km: 0, expected: "0 m"},
		{name: "kilometers keep one decimal", km: 12.34, expected: "12.3 km"},
		{name: "large distances", km: 9641.8, expected: "9641.8 km"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, service.FormatDistance(tc.km))
		})
	}
}
