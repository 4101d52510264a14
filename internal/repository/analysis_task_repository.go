package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/recurse-backend-go/internal/models"
)

// ErrTaskNotFound is returned when an analysis task does not exist
var ErrTaskNotFound = errors.New("analysis task not found")

const taskColumns = `id, skill_name, task_type, status, progress_percent, params_json,
	total_points, processed_points, failed_points, start_time, end_time,
	result_summary, error_message, created_by, created_at, updated_at`

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create creates a new analysis task
func (r *AnalysisTaskRepository) Create(task *models.AnalysisTask) error {
	query := `
		INSERT INTO analysis_tasks (
			skill_name, task_type, status, progress_percent, params_json,
			total_points, processed_points, failed_points, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.SkillName,
		task.TaskType,
		task.Status,
		task.ProgressPercent,
		task.ParamsJSON,
		task.TotalPoints,
		task.ProcessedPoints,
		task.FailedPoints,
		task.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.AnalysisTask, error) {
	task := &models.AnalysisTask{}
	err := row.Scan(
		&task.ID,
		&task.SkillName,
		&task.TaskType,
		&task.Status,
		&task.ProgressPercent,
		&task.ParamsJSON,
		&task.TotalPoints,
		&task.ProcessedPoints,
		&task.FailedPoints,
		&task.StartTime,
		&task.EndTime,
		&task.ResultSummary,
		&task.ErrorMessage,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}

// GetByID retrieves an analysis task by ID
func (r *AnalysisTaskRepository) GetByID(id int64) (*models.AnalysisTask, error) {
	row := r.db.QueryRow("SELECT "+taskColumns+" FROM analysis_tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis task: %w", err)
	}

	return task, nil
}

// List retrieves analysis tasks with optional filters
func (r *AnalysisTaskRepository) List(skillName string, status string, limit int, offset int) ([]*models.AnalysisTask, error) {
	query := "SELECT " + taskColumns + " FROM analysis_tasks WHERE 1=1"

	args := []any{}
	if skillName != "" {
		query += " AND skill_name = ?"
		args = append(args, skillName)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.AnalysisTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateProgress updates the progress of an analysis task. Progress never
// moves backwards, so concurrent workers may report out of order.
func (r *AnalysisTaskRepository) UpdateProgress(id int64, processed, total, failed int) error {
	percent := 0
	if total > 0 {
		percent = processed * 100 / total
	}

	query := `
		UPDATE analysis_tasks
		SET processed_points = MAX(processed_points, ?), total_points = ?,
			failed_points = MAX(failed_points, ?),
			progress_percent = MAX(progress_percent, ?), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, processed, total, failed, percent, id); err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	return nil
}

// MarkAsRunning marks a task as running
func (r *AnalysisTaskRepository) MarkAsRunning(id int64) error {
	query := `
		UPDATE analysis_tasks
		SET status = ?, start_time = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, models.TaskStatusRunning, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	return nil
}

// MarkAsCompleted marks a task as completed with result summary
func (r *AnalysisTaskRepository) MarkAsCompleted(id int64, resultSummary string) error {
	query := `
		UPDATE analysis_tasks
		SET status = ?, end_time = ?, result_summary = ?,
			progress_percent = 100, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, models.TaskStatusCompleted, time.Now().Unix(), resultSummary, id); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	return nil
}

// MarkAsFailed marks a task as failed with an error message
func (r *AnalysisTaskRepository) MarkAsFailed(id int64, errorMessage string) error {
	return r.finish(id, models.TaskStatusFailed, errorMessage)
}

// MarkAsCancelled marks a task as cancelled
func (r *AnalysisTaskRepository) MarkAsCancelled(id int64) error {
	return r.finish(id, models.TaskStatusCancelled, "Task cancelled by user")
}

func (r *AnalysisTaskRepository) finish(id int64, status, message string) error {
	query := `
		UPDATE analysis_tasks
		SET status = ?, end_time = ?, error_message = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.Exec(query, status, time.Now().Unix(), message, id); err != nil {
		return fmt.Errorf("failed to mark task as %s: %w", status, err)
	}

	return nil
}
