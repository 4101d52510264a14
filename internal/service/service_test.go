package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jengzang/recurse-backend-go/internal/analysis"
	"github.com/jengzang/recurse-backend-go/internal/database"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

type services struct {
	tracks     *TrackService
	recursions *RecursionService
	tasks      *AnalysisTaskService
	taskRepo   *repository.AnalysisTaskRepository
}

func newServices(t *testing.T) *services {
	t.Helper()
	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	trackRepo := repository.NewTrackRepository(conn)
	runRepo := repository.NewRecursionRepository(conn)
	taskRepo := repository.NewAnalysisTaskRepository(conn)
	runner := analysis.NewRecursionRunner(trackRepo, runRepo, analysis.RunnerConfig{DefaultTimeUnits: "secs"})

	s := &services{
		tracks:     NewTrackService(trackRepo),
		recursions: NewRecursionService(runner, runRepo),
		tasks:      NewAnalysisTaskService(taskRepo, &analysis.Env{Tasks: taskRepo, Runner: runner}),
		taskRepo:   taskRepo,
	}
	t.Cleanup(s.tasks.Shutdown)
	return s
}
