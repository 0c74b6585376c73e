// Package regions holds the fixed geographic catalog the classifier
// output space is reduced into. The catalog is read-only for the
// process lifetime.
package regions

import (
	"math"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Region is one catalog entry: a named geographic area with a
// representative center coordinate.
type Region struct {
	ID     int                // Dense index 0..N-1 within the catalog.
	Name   string             // Human-readable region name.
	Center models.Coordinates // Representative center of the region.
}

// Catalog is an immutable indexed table of regions.
type Catalog struct {
	entries []Region
}

// Default returns the continental catalog. IDs are densely numbered so
// any non-negative classifier class reduces into a valid entry via
// modulo.
func Default() *Catalog {
	return &Catalog{entries: []Region{
		{ID: 0, Name: "North America", Center: models.Coordinates{Latitude: 40.7128, Longitude: -74.0060}},
		{ID: 1, Name: "South America", Center: models.Coordinates{Latitude: -15.7801, Longitude: -47.9292}},
		{ID: 2, Name: "Europe", Center: models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}},
		{ID: 3, Name: "Africa", Center: models.Coordinates{Latitude: -1.2921, Longitude: 36.8219}},
		{ID: 4, Name: "Asia", Center: models.Coordinates{Latitude: 35.6762, Longitude: 139.6503}},
		{ID: 5, Name: "Australia", Center: models.Coordinates{Latitude: -33.8688, Longitude: 151.2093}},
	}}
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Reduce maps an arbitrary non-negative classifier class into the
// catalog by modulo. This decouples the classifier's output cardinality
// from the catalog size.
func (c *Catalog) Reduce(classID int) Region {
	return c.entries[classID%len(c.entries)]
}

// Nearest returns the region whose center minimizes planar Euclidean
// distance to the given coordinates. This is a coarse lookup only: the
// planar metric is inaccurate near the poles and the antimeridian, and
// accuracy scoring must always use great-circle distance instead.
func (c *Catalog) Nearest(coords models.Coordinates) Region {
	nearest := c.entries[0]
	minDist := math.Inf(1)

	for _, region := range c.entries {
		dLat := coords.Latitude - region.Center.Latitude
		dLon := coords.Longitude - region.Center.Longitude
		dist := math.Sqrt(dLat*dLat + dLon*dLon)
		if dist < minDist {
			minDist = dist
			nearest = region
		}
	}

	return nearest
}
