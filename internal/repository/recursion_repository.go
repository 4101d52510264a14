package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/recurse-backend-go/internal/database"
	"github.com/jengzang/recurse-backend-go/internal/models"
)

// ErrRunNotFound is returned when a recursion run does not exist
var ErrRunNotFound = errors.New("recursion run not found")

// RecursionRepository stores recursion runs with their summaries and visits
type RecursionRepository struct {
	db *sql.DB
}

// NewRecursionRepository creates a new recursion repository
func NewRecursionRepository(db *sql.DB) *RecursionRepository {
	return &RecursionRepository{db: db}
}

// SaveRun stores a run, its per-location summaries and its visit log in one transaction
func (r *RecursionRepository) SaveRun(ctx context.Context, run models.RecursionRun, summaries []models.RevisitSummary, visits []models.VisitRecord) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recursion_runs (
				id, dataset, radius, threshold, time_units, verbose,
				sample_count, location_count, duration_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.Dataset, run.Radius, run.Threshold, run.TimeUnits, run.Verbose,
			run.SampleCount, run.LocationCount, run.DurationMs)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		summaryStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO revisit_summaries (run_id, location_index, x, y, revisits, residence_time)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare summary statement: %w", err)
		}
		defer summaryStmt.Close()

		for _, s := range summaries {
			if _, err := summaryStmt.ExecContext(ctx, run.ID, s.LocationIndex, s.X, s.Y, s.Revisits, s.ResidenceTime); err != nil {
				return fmt.Errorf("failed to insert summary for location %d: %w", s.LocationIndex, err)
			}
		}

		if len(visits) == 0 {
			return nil
		}

		visitStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO visit_records (
				run_id, track_id, x, y, location_index, visit_index,
				entrance_time, exit_time, time_inside, time_since_last_visit
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare visit statement: %w", err)
		}
		defer visitStmt.Close()

		for _, v := range visits {
			_, err := visitStmt.ExecContext(ctx, run.ID, v.TrackID, v.X, v.Y, v.CoordIdx, v.VisitIdx,
				v.EntranceTime, v.ExitTime, v.TimeInside, v.TimeSinceLastVisit)
			if err != nil {
				return fmt.Errorf("failed to insert visit %d of location %d: %w", v.VisitIdx, v.CoordIdx, err)
			}
		}
		return nil
	})
}

// GetRun retrieves the header of a run
func (r *RecursionRepository) GetRun(id string) (*models.RecursionRun, error) {
	var run models.RecursionRun
	var dataset, createdAt sql.NullString
	err := r.db.QueryRow(`
		SELECT id, dataset, radius, threshold, time_units, verbose,
			sample_count, location_count, duration_ms, created_at
		FROM recursion_runs WHERE id = ?
	`, id).Scan(&run.ID, &dataset, &run.Radius, &run.Threshold, &run.TimeUnits, &run.Verbose,
		&run.SampleCount, &run.LocationCount, &run.DurationMs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Dataset = dataset.String
	run.CreatedAt = createdAt.String
	return &run, nil
}

// ListRuns lists run headers, newest first
func (r *RecursionRepository) ListRuns(dataset string, limit, offset int) ([]models.RecursionRun, error) {
	query := `
		SELECT id, dataset, radius, threshold, time_units, verbose,
			sample_count, location_count, duration_ms, created_at
		FROM recursion_runs`
	args := []any{}
	if dataset != "" {
		query += " WHERE dataset = ?"
		args = append(args, dataset)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RecursionRun{}
	for rows.Next() {
		var run models.RecursionRun
		var ds, createdAt sql.NullString
		if err := rows.Scan(&run.ID, &ds, &run.Radius, &run.Threshold, &run.TimeUnits, &run.Verbose,
			&run.SampleCount, &run.LocationCount, &run.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Dataset = ds.String
		run.CreatedAt = createdAt.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetSummaries retrieves the per-location summaries of a run
func (r *RecursionRepository) GetSummaries(runID string) ([]models.RevisitSummary, error) {
	rows, err := r.db.Query(`
		SELECT location_index, x, y, revisits, residence_time
		FROM revisit_summaries WHERE run_id = ?
		ORDER BY location_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.RevisitSummary{}
	for rows.Next() {
		var s models.RevisitSummary
		if err := rows.Scan(&s.LocationIndex, &s.X, &s.Y, &s.Revisits, &s.ResidenceTime); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// GetVisits retrieves the visit log of a run in location and visit order
func (r *RecursionRepository) GetVisits(runID string) ([]models.VisitRecord, error) {
	rows, err := r.db.Query(`
		SELECT track_id, x, y, location_index, visit_index,
			entrance_time, exit_time, time_inside, time_since_last_visit
		FROM visit_records WHERE run_id = ?
		ORDER BY location_index, visit_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	visits := []models.VisitRecord{}
	for rows.Next() {
		var v models.VisitRecord
		var since sql.NullFloat64
		if err := rows.Scan(&v.TrackID, &v.X, &v.Y, &v.CoordIdx, &v.VisitIdx,
			&v.EntranceTime, &v.ExitTime, &v.TimeInside, &since); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		if since.Valid {
			v.TimeSinceLastVisit = &since.Float64
		}
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// DeleteRun removes a run and its results
func (r *RecursionRepository) DeleteRun(id string) error {
	result, err := r.db.Exec("DELETE FROM recursion_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
