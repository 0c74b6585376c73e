package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// schemaQuery creates the run history table on first use.
const schemaQuery = `
	CREATE TABLE IF NOT EXISTS evaluation_runs (
		run_id          SERIAL PRIMARY KEY,
		image_path      TEXT NOT NULL,
		predicted_lat   DOUBLE PRECISION NOT NULL,
		predicted_lon   DOUBLE PRECISION NOT NULL,
		region_name     TEXT NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		predicted_class INTEGER NOT NULL,
		location        TEXT NOT NULL,
		actual_lat      DOUBLE PRECISION,
		actual_lon      DOUBLE PRECISION,
		actual_location TEXT,
		distance_km     DOUBLE PRECISION,
		tier            TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// EnsureSchema creates the run history table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to ensure run history schema: %w", err)
	}

	return nil
}

// SaveRun persists a completed evaluation run and returns its assigned id.
// Verification columns stay NULL for runs without ground truth.
func (r *Repository) SaveRun(ctx context.Context, run models.Run) (int, error) {
	query := `
		INSERT INTO evaluation_runs (
			image_path, predicted_lat, predicted_lon, region_name, confidence,
			predicted_class, location, actual_lat, actual_lon, actual_location,
			distance_km, tier
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING run_id;
	`

	var actualLat, actualLon, distanceKm *float64
	var actualLocation, tier *string
	if v := run.Verification; v != nil {
		actualLat = &v.Coordinates.Latitude
		actualLon = &v.Coordinates.Longitude
		actualLocation = &v.Location
		distanceKm = &v.DistanceKm
		tierText := string(v.Tier)
		tier = &tierText
	}

	var runID int
	err := r.db.QueryRow(ctx, query,
		run.ImagePath,
		run.Prediction.Coordinates.Latitude,
		run.Prediction.Coordinates.Longitude,
		run.Prediction.RegionName,
		run.Prediction.Confidence,
		run.Prediction.Class,
		run.Location,
		actualLat, actualLon, actualLocation, distanceKm, tier,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert evaluation run: %w", err)
	}

	r.log.DebugContext(ctx, "Evaluation run saved", "ID", runID, "image", run.ImagePath)

	return runID, nil
}

// RecentRuns retrieves the most recent evaluation runs, newest first,
// limited to the specified count.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	query := `
		SELECT
			run_id, image_path, predicted_lat, predicted_lon, region_name,
			confidence, predicted_class, location, actual_lat, actual_lon,
			actual_location, distance_km, tier, created_at
		FROM evaluation_runs
		ORDER BY created_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		var actualLat, actualLon, distanceKm *float64
		var actualLocation, tier *string

		errScan := rows.Scan(
			&run.ID,
			&run.ImagePath,
			&run.Prediction.Coordinates.Latitude,
			&run.Prediction.Coordinates.Longitude,
			&run.Prediction.RegionName,
			&run.Prediction.Confidence,
			&run.Prediction.Class,
			&run.Location,
			&actualLat, &actualLon, &actualLocation, &distanceKm, &tier,
			&run.CreatedAt,
		)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan evaluation run: %w", errScan)
		}

		if actualLat != nil && actualLon != nil && actualLocation != nil && distanceKm != nil && tier != nil {
			run.Verification = &models.Verification{
				Coordinates: models.Coordinates{Latitude: *actualLat, Longitude: *actualLon},
				Location:    *actualLocation,
				DistanceKm:  *distanceKm,
				Tier:        models.AccuracyTier(*tier),
			}
		}

		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return runs, nil
}
