package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/recurse-backend-go/internal/analysis"
	"github.com/jengzang/recurse-backend-go/internal/models"
)

const blockingSkill = "blocking_test"

var blockingStarted = make(chan int64, 1)

type blockingAnalyzer struct {
	*analysis.BaseAnalyzer
}

func (a *blockingAnalyzer) Analyze(ctx context.Context, taskID int64, _ []byte) error {
	if err := a.Tasks.MarkAsRunning(taskID); err != nil {
		return err
	}
	blockingStarted <- taskID
	<-ctx.Done()
	return ctx.Err()
}

func init() {
	analysis.RegisterAnalyzer(blockingSkill, func(env *analysis.Env) analysis.Analyzer {
		return &blockingAnalyzer{BaseAnalyzer: analysis.NewBaseAnalyzer(env.Tasks, blockingSkill)}
	})
}

func TestRecursionTaskCompletes(t *testing.T) {
	s := newServices(t)

	points := []models.UploadPoint{{X: -20, T: 0}, {X: 0, T: 1}, {X: 20, T: 2}, {X: 0, T: 3}}
	_, err := s.tracks.UploadPoints("walk", models.UploadPointsRequest{Points: points})
	require.NoError(t, err)

	task, err := s.tasks.CreateTask(analysis.SkillRecursion, "", map[string]any{
		"dataset": "walk",
		"radius":  5,
		"verbose": true,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	s.tasks.Wait()

	got, err := s.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status, got.ErrorMessage)
	assert.Equal(t, 4, got.TotalPoints)
	assert.Equal(t, 4, got.ProcessedPoints)
	assert.Contains(t, got.ResultSummary, "run_id")
}

func TestRecursionTaskFailsOnMissingDataset(t *testing.T) {
	s := newServices(t)

	task, err := s.tasks.CreateTask(analysis.SkillRecursion, models.TaskTypeFullRecompute,
		map[string]any{"dataset": "missing", "radius": 5}, "admin")
	require.NoError(t, err)

	s.tasks.Wait()

	got, err := s.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "dataset not found")
}

func TestCancelRunningTask(t *testing.T) {
	s := newServices(t)

	task, err := s.tasks.CreateTask(blockingSkill, "", nil, "admin")
	require.NoError(t, err)

	select {
	case id := <-blockingStarted:
		require.Equal(t, task.ID, id)
	case <-time.After(5 * time.Second):
		t.Fatal("analyzer did not start")
	}

	require.NoError(t, s.tasks.CancelTask(task.ID))
	s.tasks.Wait()

	got, err := s.tasks.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCancelled, got.Status)

	err = s.tasks.CancelTask(task.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateTaskValidation(t *testing.T) {
	s := newServices(t)

	_, err := s.tasks.CreateTask("nope", "", nil, "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.tasks.CreateTask(analysis.SkillRecursion, "SOMETIMES", nil, "admin")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.tasks.GetTask(42)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.tasks.CancelTask(42)
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := s.tasks.ListTasks("", "", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
