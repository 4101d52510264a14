package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/recurse"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

var (
	// ErrInvalidRequest marks errors caused by the caller's input
	ErrInvalidRequest = errors.New("invalid recursion request")
	// ErrDatasetNotFound is returned when a named dataset has no points
	ErrDatasetNotFound = errors.New("dataset not found")
)

// RunnerConfig holds recursion defaults
type RunnerConfig struct {
	DefaultTimeUnits string
	Workers          int
	LogIncrement     int
}

// RecursionRunner resolves recursion requests into samples and locations,
// computes them and stores the outcome as a run.
type RecursionRunner struct {
	tracks *repository.TrackRepository
	runs   *repository.RecursionRepository
	cfg    RunnerConfig
}

// NewRecursionRunner creates a new recursion runner
func NewRecursionRunner(tracks *repository.TrackRepository, runs *repository.RecursionRepository, cfg RunnerConfig) *RecursionRunner {
	if cfg.DefaultTimeUnits == "" {
		cfg.DefaultTimeUnits = string(recurse.Hours)
	}
	return &RecursionRunner{tracks: tracks, runs: runs, cfg: cfg}
}

// Run computes a recursion and persists it. onProgress may be nil; it is
// called once per finished location.
func (r *RecursionRunner) Run(ctx context.Context, req models.RecursionRequest, onProgress func(done, total int)) (*models.RecursionResult, error) {
	samples, err := r.samples(ctx, req)
	if err != nil {
		return nil, err
	}

	locations := recurse.SelfLocations(samples)
	if req.Locations != nil {
		locations, err = recurse.LocationsFromColumns(req.Locations.X, req.Locations.Y)
		if err != nil {
			return nil, fmt.Errorf("%w: locations: %w", ErrInvalidRequest, err)
		}
	}

	units := req.TimeUnits
	if units == "" {
		units = r.cfg.DefaultTimeUnits
	}
	if !recurse.IsValidTimeUnit(units) {
		logger.Warnw("Unknown time unit, using secs",
			"timeunits", units, "valid", recurse.ValidTimeUnitsString())
	}

	start := time.Now()
	res, err := recurse.Compute(ctx, samples, locations, recurse.Params{
		Radius:       req.Radius,
		Threshold:    req.Threshold,
		TimeUnits:    recurse.TimeUnit(units),
		Verbose:      req.Verbose,
		Workers:      r.cfg.Workers,
		LogIncrement: r.cfg.LogIncrement,
		OnProgress:   onProgress,
	})
	if err != nil {
		if errors.Is(err, recurse.ErrEmptyTrajectory) ||
			errors.Is(err, recurse.ErrInvalidRadius) ||
			errors.Is(err, recurse.ErrInvalidThreshold) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return nil, err
	}
	elapsed := time.Since(start)

	result := toResult(uuid.NewString(), res, req.IncludeDistances)
	run := models.RecursionRun{
		ID:            result.RunID,
		Dataset:       req.Dataset,
		Radius:        res.Radius,
		Threshold:     req.Threshold,
		TimeUnits:     string(res.TimeUnits),
		Verbose:       req.Verbose,
		SampleCount:   len(samples),
		LocationCount: len(locations),
		DurationMs:    elapsed.Milliseconds(),
	}
	if err := r.runs.SaveRun(ctx, run, summaries(res, locations), result.RevisitStats); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	logger.Infow("Recursion run completed",
		"run_id", run.ID,
		"dataset", run.Dataset,
		"samples", run.SampleCount,
		"locations", run.LocationCount,
		"visits", len(result.RevisitStats),
		"elapsed", elapsed,
	)
	return result, nil
}

// samples reads the trajectory from the request or from a stored dataset
func (r *RecursionRunner) samples(ctx context.Context, req models.RecursionRequest) ([]recurse.Sample, error) {
	switch {
	case req.Trajectory != nil && req.Dataset != "":
		return nil, fmt.Errorf("%w: give either a trajectory or a dataset", ErrInvalidRequest)

	case req.Trajectory != nil:
		tr := req.Trajectory
		times := make([]time.Time, len(tr.T))
		for i, secs := range tr.T {
			times[i] = models.FromUnixSeconds(secs)
		}
		var ids []string
		if len(tr.ID) > 0 {
			ids = tr.ID
		}
		samples, err := recurse.SamplesFromColumns(tr.X, tr.Y, times, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: trajectory: %w", ErrInvalidRequest, err)
		}
		return samples, nil

	case req.Dataset != "":
		points, err := r.tracks.LoadDataset(ctx, req.Dataset)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, req.Dataset)
		}
		samples := make([]recurse.Sample, len(points))
		for i, p := range points {
			samples[i] = p.Sample()
		}
		return samples, nil
	}

	return nil, fmt.Errorf("%w: a trajectory or a dataset is required", ErrInvalidRequest)
}

func toResult(runID string, res *recurse.Result, includeDistances bool) *models.RecursionResult {
	out := &models.RecursionResult{
		RunID:         runID,
		Revisits:      res.Revisits,
		ResidenceTime: res.ResidenceTime,
		Radius:        res.Radius,
		TimeUnits:     string(res.TimeUnits),
	}

	if includeDistances && res.Distances != nil {
		rows, _ := res.Distances.Dims()
		out.Distances = make([][]float64, rows)
		for i := range out.Distances {
			out.Distances[i] = mat.Row(nil, i, res.Distances)
		}
	}

	if res.Visits != nil {
		out.RevisitStats = make([]models.VisitRecord, len(res.Visits))
		for i, v := range res.Visits {
			out.RevisitStats[i] = models.VisitRecord{
				TrackID:            v.TrackID,
				X:                  v.X,
				Y:                  v.Y,
				CoordIdx:           v.LocationIndex,
				VisitIdx:           v.VisitIndex,
				EntranceTime:       models.UnixSeconds(v.EntranceTime),
				ExitTime:           models.UnixSeconds(v.ExitTime),
				TimeInside:         v.TimeInside,
				TimeSinceLastVisit: v.TimeSinceLastVisit,
			}
		}
	}
	return out
}

func summaries(res *recurse.Result, locations []recurse.Location) []models.RevisitSummary {
	out := make([]models.RevisitSummary, len(locations))
	for i, loc := range locations {
		out[i] = models.RevisitSummary{
			LocationIndex: i + 1,
			X:             loc.X,
			Y:             loc.Y,
			Revisits:      res.Revisits[i],
			ResidenceTime: res.ResidenceTime[i],
		}
	}
	return out
}
