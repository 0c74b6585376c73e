// Package exifgps converts raw EXIF GPS tags into signed decimal-degree
// coordinates. Extraction of the raw tags from image files is delegated
// to the goexif reader; decoding itself depends only on the tag values.
package exifgps

import (
	"errors"
	"fmt"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Conventional EXIF tag names for the GPS quadruple, matching the
// identifiers emitted by common EXIF readers.
const (
	TagLatitude     = "GPS GPSLatitude"
	TagLatitudeRef  = "GPS GPSLatitudeRef"
	TagLongitude    = "GPS GPSLongitude"
	TagLongitudeRef = "GPS GPSLongitudeRef"
)

// Hemisphere references that flip the coordinate sign.
const (
	refSouth = "S"
	refWest  = "W"
)

// dmsComponents is the expected number of rationals per coordinate:
// degrees, minutes and seconds.
const dmsComponents = 3

// Common errors for GPS tag decoding.
var (
	ErrZeroDenominator = errors.New("exif gps rational has zero denominator")
	ErrMalformedTag    = errors.New("exif gps tag is not a degrees/minutes/seconds triple")
)

// Rational is an EXIF rational value expressed as a numerator/denominator pair.
type Rational struct {
	Num int64
	Den int64
}

// Tag is a raw EXIF tag value: either a list of rationals or a text value.
type Tag struct {
	Rationals []Rational // Set for coordinate value tags.
	Text      string     // Set for hemisphere reference tags.
}

// TagSet maps EXIF tag names to their raw values.
type TagSet map[string]Tag

// Decode converts the GPS quadruple of a tag set into signed decimal
// degrees. It returns ok=false without an error when any of the four
// required tags is absent; an incomplete quadruple is a missing-data
// condition, not a failure. Malformed rationals are fatal.
func Decode(tags TagSet) (*models.Coordinates, bool, error) {
	latTag, latOk := tags[TagLatitude]
	latRef, latRefOk := tags[TagLatitudeRef]
	lonTag, lonOk := tags[TagLongitude]
	lonRef, lonRefOk := tags[TagLongitudeRef]

	if !latOk || !latRefOk || !lonOk || !lonRefOk {
		return nil, false, nil
	}

	lat, err := toDegrees(latTag.Rationals)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode latitude: %w", err)
	}
	if latRef.Text == refSouth {
		lat = -lat
	}

	lon, err := toDegrees(lonTag.Rationals)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode longitude: %w", err)
	}
	if lonRef.Text == refWest {
		lon = -lon
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, true, nil
}

// toDegrees converts a degrees/minutes/seconds rational triple into
// decimal degrees.
func toDegrees(rats []Rational) (float64, error) {
	if len(rats) != dmsComponents {
		return 0, fmt.Errorf("%w: got %d components", ErrMalformedTag, len(rats))
	}

	parts := make([]float64, dmsComponents)
	for i, r := range rats {
		if r.Den == 0 {
			return 0, fmt.Errorf("%w: component %d", ErrZeroDenominator, i)
		}
		parts[i] = float64(r.Num) / float64(r.Den)
	}

	return parts[0] + parts[1]/60.0 + parts[2]/3600.0, nil
}
