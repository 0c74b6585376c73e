package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point, in decimal degrees [-90, 90].
	Longitude float64 // Longitude of the geographical point, in decimal degrees [-180, 180].
}
