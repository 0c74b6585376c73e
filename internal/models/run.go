package models

import "time"

// AccuracyTier is a coarse bucket describing how far a prediction landed
// from the ground-truth coordinates.
type AccuracyTier string

// Accuracy tiers with their fixed kilometer thresholds.
const (
	TierVeryClose  AccuracyTier = "very close"  // distance < 10 km
	TierSameRegion AccuracyTier = "same region" // 10 km <= distance < 100 km
	TierFar        AccuracyTier = "far"         // distance >= 100 km
)

// Thresholds separating the accuracy tiers, in kilometers.
const (
	veryCloseKm  = 10.0
	sameRegionKm = 100.0
)

// TierFor buckets a kilometer distance into an accuracy tier.
func TierFor(distanceKm float64) AccuracyTier {
	switch {
	case distanceKm < veryCloseKm:
		return TierVeryClose
	case distanceKm < sameRegionKm:
		return TierSameRegion
	default:
		return TierFar
	}
}

// Verification holds the optional ground-truth comparison of a run.
// It is only present when the image carried a complete GPS quadruple.
type Verification struct {
	Coordinates Coordinates  // Actual coordinates decoded from EXIF.
	Location    string       // Human-readable actual location.
	DistanceKm  float64      // Great-circle distance between prediction and truth.
	Tier        AccuracyTier // Accuracy bucket derived from DistanceKm.
}

// Run is the full report of one evaluation pipeline run.
type Run struct {
	ID           int           // Assigned by the history store; zero until saved.
	ImagePath    string        // Path of the evaluated image.
	Prediction   Prediction    // Model output after catalog reduction.
	Location     string        // Human-readable predicted location.
	Verification *Verification // Nil when EXIF verification was skipped or had no GPS data.
	CreatedAt    time.Time     // Assigned by the history store.
}
