package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/recurse"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

// TrackService handles business logic for stored trajectories
type TrackService struct {
	trackRepo *repository.TrackRepository
}

// NewTrackService creates a new track service
func NewTrackService(trackRepo *repository.TrackRepository) *TrackService {
	return &TrackService{
		trackRepo: trackRepo,
	}
}

// UploadPoints stores points under a dataset name and returns the dataset size
func (s *TrackService) UploadPoints(dataset string, req models.UploadPointsRequest) (int64, error) {
	if strings.TrimSpace(dataset) == "" {
		return 0, fmt.Errorf("%w: dataset name is empty", ErrInvalidInput)
	}

	for i := range req.Points {
		if req.Points[i].TrackID == "" {
			req.Points[i].TrackID = recurse.DefaultTrackID
		}
	}

	total, err := s.trackRepo.InsertPoints(dataset, req.Points, req.Replace)
	if err != nil {
		return 0, fmt.Errorf("failed to store points: %w", err)
	}
	return total, nil
}

// GetTrackPoints retrieves points of a dataset with filtering and pagination
func (s *TrackService) GetTrackPoints(dataset string, filter models.TrackPointFilter) (*models.TrackPointsResponse, error) {
	// Validate filter
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	points, total, err := s.trackRepo.GetTrackPoints(dataset, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get track points: %w", err)
	}

	// Calculate total pages
	totalPages := int(math.Ceil(float64(total) / float64(filter.PageSize)))

	return &models.TrackPointsResponse{
		Data:       points,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ListDatasets summarizes the stored datasets
func (s *TrackService) ListDatasets() ([]models.Dataset, error) {
	return s.trackRepo.ListDatasets()
}

// DeleteDataset removes a dataset
func (s *TrackService) DeleteDataset(dataset string) (int64, error) {
	removed, err := s.trackRepo.DeleteDataset(dataset)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: dataset %s", ErrNotFound, dataset)
	}
	return removed, nil
}
