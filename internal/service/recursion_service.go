package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jengzang/recurse-backend-go/internal/analysis"
	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/recurse"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

// RecursionService handles recursion runs
type RecursionService struct {
	runner *analysis.RecursionRunner
	runs   *repository.RecursionRepository
}

// NewRecursionService creates a new recursion service
func NewRecursionService(runner *analysis.RecursionRunner, runs *repository.RecursionRepository) *RecursionService {
	return &RecursionService{runner: runner, runs: runs}
}

// Compute runs a recursion synchronously
func (s *RecursionService) Compute(ctx context.Context, req models.RecursionRequest) (*models.RecursionResult, error) {
	result, err := s.runner.Run(ctx, req, nil)
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}

// GetRun retrieves a stored run with its summaries and visit log
func (s *RecursionService) GetRun(id string) (*models.RecursionRunDetail, error) {
	run, err := s.runs.GetRun(id)
	if err != nil {
		return nil, translate(err)
	}

	summaries, err := s.runs.GetSummaries(id)
	if err != nil {
		return nil, err
	}

	visits, err := s.runs.GetVisits(id)
	if err != nil {
		return nil, err
	}

	return &models.RecursionRunDetail{Run: *run, Summaries: summaries, Visits: visits}, nil
}

// ListRuns lists stored runs, optionally of one dataset
func (s *RecursionService) ListRuns(dataset string, limit, offset int) ([]models.RecursionRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.runs.ListRuns(dataset, limit, offset)
}

// GetPatterns derives revisit patterns of a stored run
func (s *RecursionService) GetPatterns(id string) ([]models.RevisitPattern, error) {
	detail, err := s.GetRun(id)
	if err != nil {
		return nil, err
	}
	unit := recurse.ParseTimeUnit(detail.Run.TimeUnits)
	return analysis.RevisitPatterns(detail.Summaries, detail.Visits, unit), nil
}

// DeleteRun removes a stored run
func (s *RecursionService) DeleteRun(id string) error {
	return translate(s.runs.DeleteRun(id))
}

// translate maps lower-layer errors onto the service error kinds
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, analysis.ErrInvalidRequest):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, analysis.ErrDatasetNotFound),
		errors.Is(err, repository.ErrRunNotFound),
		errors.Is(err, repository.ErrTaskNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
