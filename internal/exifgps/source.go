package exifgps

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/rwcarlsen/goexif/exif"
)

// Source reads GPS coordinates out of image files. Images without an
// EXIF segment, or with an incomplete GPS quadruple, yield ok=false
// rather than an error so callers can skip verification gracefully.
type Source struct {
	log *slog.Logger
}

// NewSource creates an EXIF ground-truth source.
func NewSource(log *slog.Logger) *Source {
	return &Source{log: log}
}

// Coordinates extracts and decodes the GPS coordinates embedded in the
// image at path.
func (s *Source) Coordinates(path string) (*models.Coordinates, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open image for exif extraction: %w", err)
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		// Files without EXIF metadata are a missing-data condition,
		// same as an incomplete GPS quadruple.
		s.log.Debug("No exif metadata in image", "path", path, "reason", err)
		return nil, false, nil
	}

	tags := TagSet{}
	if rats, ok := rationalsFor(meta, exif.GPSLatitude); ok {
		tags[TagLatitude] = Tag{Rationals: rats}
	}
	if text, ok := textFor(meta, exif.GPSLatitudeRef); ok {
		tags[TagLatitudeRef] = Tag{Text: text}
	}
	if rats, ok := rationalsFor(meta, exif.GPSLongitude); ok {
		tags[TagLongitude] = Tag{Rationals: rats}
	}
	if text, ok := textFor(meta, exif.GPSLongitudeRef); ok {
		tags[TagLongitudeRef] = Tag{Text: text}
	}

	return Decode(tags)
}

// rationalsFor reads a rational-list tag from the decoded metadata.
func rationalsFor(meta *exif.Exif, name exif.FieldName) ([]Rational, bool) {
	tag, err := meta.Get(name)
	if err != nil {
		return nil, false
	}

	rats := make([]Rational, int(tag.Count))
	for i := range rats {
		num, den, ratErr := tag.Rat2(i)
		if ratErr != nil {
			return nil, false
		}
		rats[i] = Rational{Num: num, Den: den}
	}

	return rats, true
}

// textFor reads a string tag from the decoded metadata.
func textFor(meta *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := meta.Get(name)
	if err != nil {
		return "", false
	}

	text, err := tag.StringVal()
	if err != nil {
		return "", false
	}

	return text, true
}
