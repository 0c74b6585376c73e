package models

// Prediction is the outcome of a single inference call: the estimated
// coordinates, the catalog region they belong to, and how confident the
// classifier is. Created once per pipeline run and never cached.
type Prediction struct {
	Coordinates Coordinates // Center of the predicted region.
	RegionName  string      // Human-readable region name.
	Confidence  float64     // Classifier confidence in [0, 1].
	Class       int         // Raw classifier class before catalog reduction.
}
