package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jengzang/recurse-backend-go/internal/database"
	"github.com/jengzang/recurse-backend-go/internal/models"
)

// TrackRepository handles database operations for stored trajectories
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new track repository
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// InsertPoints appends points to a dataset in order, or replaces the dataset
// when replace is set. It returns the number of points in the dataset.
func (r *TrackRepository) InsertPoints(dataset string, points []models.UploadPoint, replace bool) (int64, error) {
	var total int64
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		if replace {
			if _, err := tx.Exec("DELETE FROM track_points WHERE dataset = ?", dataset); err != nil {
				return fmt.Errorf("failed to clear dataset: %w", err)
			}
		}

		var next int
		err := tx.QueryRow("SELECT COALESCE(MAX(seq) + 1, 0) FROM track_points WHERE dataset = ?", dataset).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		stmt, err := tx.Prepare("INSERT INTO track_points (dataset, seq, track_id, x, y, t) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, p := range points {
			if _, err := stmt.Exec(dataset, next+i, p.TrackID, p.X, p.Y, p.T); err != nil {
				return fmt.Errorf("failed to insert point %d: %w", i, err)
			}
		}

		return tx.QueryRow("SELECT COUNT(*) FROM track_points WHERE dataset = ?", dataset).Scan(&total)
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

// GetTrackPoints retrieves points of a dataset with filtering and pagination
func (r *TrackRepository) GetTrackPoints(dataset string, filter models.TrackPointFilter) ([]models.TrackPoint, int64, error) {
	conditions := []string{"dataset = ?"}
	args := []any{dataset}

	if filter.TrackID != "" {
		conditions = append(conditions, "track_id = ?")
		args = append(args, filter.TrackID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "t >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "t <= ?")
		args = append(args, filter.EndTime)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM track_points"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count track points: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	query := "SELECT id, dataset, seq, track_id, x, y, t, created_at FROM track_points" + where +
		" ORDER BY seq LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query track points: %w", err)
	}
	defer rows.Close()

	points, err := scanPoints(rows)
	if err != nil {
		return nil, 0, err
	}

	return points, total, nil
}

// LoadDataset returns every point of a dataset in sequence order
func (r *TrackRepository) LoadDataset(ctx context.Context, dataset string) ([]models.TrackPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, dataset, seq, track_id, x, y, t, created_at FROM track_points WHERE dataset = ? ORDER BY seq",
		dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", dataset, err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// CountPoints counts the points of a dataset
func (r *TrackRepository) CountPoints(dataset string) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM track_points WHERE dataset = ?", dataset).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// ListDatasets summarizes every stored dataset
func (r *TrackRepository) ListDatasets() ([]models.Dataset, error) {
	rows, err := r.db.Query(`
		SELECT dataset, COUNT(*), COUNT(DISTINCT track_id), MIN(t), MAX(t)
		FROM track_points
		GROUP BY dataset
		ORDER BY dataset
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	datasets := []models.Dataset{}
	for rows.Next() {
		var d models.Dataset
		if err := rows.Scan(&d.Name, &d.Points, &d.Tracks, &d.StartTime, &d.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}

	return datasets, rows.Err()
}

// DeleteDataset removes all points of a dataset and returns how many were removed
func (r *TrackRepository) DeleteDataset(dataset string) (int64, error) {
	result, err := r.db.Exec("DELETE FROM track_points WHERE dataset = ?", dataset)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dataset: %w", err)
	}
	return result.RowsAffected()
}

func scanPoints(rows *sql.Rows) ([]models.TrackPoint, error) {
	points := []models.TrackPoint{}
	for rows.Next() {
		var p models.TrackPoint
		if err := rows.Scan(&p.ID, &p.Dataset, &p.Seq, &p.TrackID, &p.X, &p.Y, &p.T, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
