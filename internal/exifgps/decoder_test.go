package exifgps_test

import (
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/pinpoint/internal/exifgps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dmsTag builds a degrees/minutes/seconds tag from whole-degree parts.
func dmsTag(deg, min int64, sec float64) exifgps.Tag {
	const secScale = 100
	return exifgps.Tag{Rationals: []exifgps.Rational{
		{Num: deg, Den: 1},
		{Num: min, Den: 1},
		{Num: int64(sec * secScale), Den: secScale},
	}}
}

func fullTagSet() exifgps.TagSet {
	return exifgps.TagSet{
		exifgps.TagLatitude:     dmsTag(40, 42, 46.08),
		exifgps.TagLatitudeRef:  {Text: "N"},
		exifgps.TagLongitude:    dmsTag(74, 0, 21.6),
		exifgps.TagLongitudeRef: {Text: "W"},
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("north-west quadrant", func(t *testing.T) {
		t.Parallel()

		coords, ok, err := exifgps.Decode(fullTagSet())

		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, 40.7128, coords.Latitude, 0.0001)
		assert.InDelta(t, -74.0060, coords.Longitude, 0.0001)
	})

	t.Run("southern hemisphere negates latitude", func(t *testing.T) {
		t.Parallel()

		tags := fullTagSet()
		tags[exifgps.TagLatitudeRef] = exifgps.Tag{Text: "S"}
		tags[exifgps.TagLongitudeRef] = exifgps.Tag{Text: "E"}

		coords, ok, err := exifgps.Decode(tags)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Negative(t, coords.Latitude)
		assert.Positive(t, coords.Longitude)
	})

	t.Run("unknown reference leaves sign unchanged", func(t *testing.T) {
		t.Parallel()

		tags := fullTagSet()
		tags[exifgps.TagLatitudeRef] = exifgps.Tag{Text: "?"}

		coords, ok, err := exifgps.Decode(tags)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Positive(t, coords.Latitude)
	})

	t.Run("missing any required tag yields no coordinates", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{
			exifgps.TagLatitude,
			exifgps.TagLatitudeRef,
			exifgps.TagLongitude,
			exifgps.TagLongitudeRef,
		} {
			tags := fullTagSet()
			delete(tags, key)

			coords, ok, err := exifgps.Decode(tags)

			require.NoError(t, err, "missing %s must not be an error", key)
			assert.False(t, ok)
			assert.Nil(t, coords)
		}
	})

	t.Run("zero denominator is fatal", func(t *testing.T) {
		t.Parallel()

		tags := fullTagSet()
		tags[exifgps.TagLatitude] = exifgps.Tag{Rationals: []exifgps.Rational{
			{Num: 40, Den: 1}, {Num: 42, Den: 0}, {Num: 46, Den: 1},
		}}

		coords, ok, err := exifgps.Decode(tags)

		require.Error(t, err)
		require.ErrorIs(t, err, exifgps.ErrZeroDenominator)
		assert.False(t, ok)
		assert.Nil(t, coords)
	})

	t.Run("truncated rational triple is fatal", func(t *testing.T) {
		t.Parallel()

		tags := fullTagSet()
		tags[exifgps.TagLongitude] = exifgps.Tag{Rationals: []exifgps.Rational{{Num: 74, Den: 1}}}

		_, _, err := exifgps.Decode(tags)

		require.Error(t, err)
		require.ErrorIs(t, err, exifgps.ErrMalformedTag)
	})

	t.Run("empty tag set yields no coordinates", func(t *testing.T) {
		t.Parallel()

		coords, ok, err := exifgps.Decode(exifgps.TagSet{})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, coords)
	})
}

func TestSource_NoExifSegment(t *testing.T) {
	defer filet.CleanUp(t)

	// PNG files carry no EXIF segment; this must surface as "no GPS
	// data", not as an error.
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "plain.png")

	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, file.Close())

	source := exifgps.NewSource(slog.Default())
	coords, ok, err := source.Coordinates(path)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, coords)
}

func TestSource_MissingFile(t *testing.T) {
	t.Parallel()

	source := exifgps.NewSource(slog.Default())
	_, _, err := source.Coordinates("/nonexistent/image.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open image")
}
