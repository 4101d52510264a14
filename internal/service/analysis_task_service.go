package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jengzang/recurse-backend-go/internal/analysis"
	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/internal/models"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

// AnalysisTaskService handles analysis task business logic
type AnalysisTaskService struct {
	repo *repository.AnalysisTaskRepository
	env  *analysis.Env

	mu      sync.Mutex
	running map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewAnalysisTaskService creates a new analysis task service
func NewAnalysisTaskService(repo *repository.AnalysisTaskRepository, env *analysis.Env) *AnalysisTaskService {
	return &AnalysisTaskService{
		repo:    repo,
		env:     env,
		running: make(map[int64]context.CancelFunc),
	}
}

// CreateTask creates a new analysis task and starts it in the background
func (s *AnalysisTaskService) CreateTask(skillName string, taskType string, params map[string]any, createdBy string) (*models.AnalysisTask, error) {
	// Validate skill name
	if !analysis.IsRegisteredSkill(skillName) {
		return nil, fmt.Errorf("%w: unknown skill %s", ErrInvalidInput, skillName)
	}

	// Validate task type
	if taskType == "" {
		taskType = models.TaskTypeFullRecompute
	}
	if taskType != models.TaskTypeIncremental && taskType != models.TaskTypeFullRecompute {
		return nil, fmt.Errorf("%w: invalid task type %s", ErrInvalidInput, taskType)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize params: %v", ErrInvalidInput, err)
	}

	task := &models.AnalysisTask{
		SkillName:  skillName,
		TaskType:   taskType,
		Status:     models.TaskStatusPending,
		ParamsJSON: string(paramsJSON),
		CreatedBy:  createdBy,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.running[task.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(ctx, task.ID, skillName, paramsJSON)

	return task, nil
}

// execute runs an analyzer and records how it ended
func (s *AnalysisTaskService) execute(ctx context.Context, taskID int64, skillName string, params []byte) {
	defer s.wg.Done()
	defer s.release(taskID)

	logger.Infow("Starting analysis task", "task_id", taskID, "skill", skillName)

	analyzer := analysis.GetAnalyzer(skillName, s.env)
	if analyzer == nil {
		s.fail(taskID, fmt.Sprintf("Unknown skill: %s", skillName))
		return
	}

	err := analyzer.Analyze(ctx, taskID, params)
	switch {
	case err == nil:
		logger.Infow("Analysis task completed", "task_id", taskID, "skill", skillName)
	case errors.Is(err, context.Canceled):
		logger.Infow("Analysis task cancelled", "task_id", taskID, "skill", skillName)
		if err := s.repo.MarkAsCancelled(taskID); err != nil {
			logger.Errorw("Failed to mark task as cancelled", "task_id", taskID, "error", err)
		}
	default:
		logger.Errorw("Analysis task failed", "task_id", taskID, "skill", skillName, "error", err)
		s.fail(taskID, fmt.Sprintf("Analysis failed: %v", err))
	}
}

func (s *AnalysisTaskService) fail(taskID int64, message string) {
	if err := s.repo.MarkAsFailed(taskID, message); err != nil {
		logger.Errorw("Failed to mark task as failed", "task_id", taskID, "error", err)
	}
}

func (s *AnalysisTaskService) release(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.running[taskID]; ok {
		cancel()
		delete(s.running, taskID)
	}
}

// GetTask retrieves a task by ID
func (s *AnalysisTaskService) GetTask(id int64) (*models.AnalysisTask, error) {
	task, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translate(err)
	}
	return task, nil
}

// ListTasks retrieves all tasks with optional filters
func (s *AnalysisTaskService) ListTasks(skillName string, status string, limit int, offset int) ([]*models.AnalysisTask, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(skillName, status, limit, offset)
}

// CancelTask cancels a pending or running task. The analyzer stops at its
// next cancellation point and the task is then marked as cancelled.
func (s *AnalysisTaskService) CancelTask(id int64) error {
	task, err := s.GetTask(id)
	if err != nil {
		return err
	}

	if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusRunning {
		return fmt.Errorf("%w: task is not running (status: %s)", ErrConflict, task.Status)
	}

	s.mu.Lock()
	cancel, ok := s.running[id]
	s.mu.Unlock()

	if !ok {
		// Left over from a previous process
		return s.repo.MarkAsCancelled(id)
	}

	cancel()
	return nil
}

// Shutdown cancels every running task and waits for them to stop
func (s *AnalysisTaskService) Shutdown() {
	s.mu.Lock()
	for _, cancel := range s.running {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until every started task has finished
func (s *AnalysisTaskService) Wait() {
	s.wg.Wait()
}
