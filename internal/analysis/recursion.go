package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/internal/models"
)

// SkillRecursion is the skill name of the recursion analyzer
const SkillRecursion = "recursion"

func init() {
	RegisterAnalyzer(SkillRecursion, NewRecursionAnalyzer)
}

// RecursionAnalyzer runs a recursion over a stored dataset as a background task
type RecursionAnalyzer struct {
	*BaseAnalyzer
	runner *RecursionRunner
}

// NewRecursionAnalyzer creates a new recursion analyzer
func NewRecursionAnalyzer(env *Env) Analyzer {
	return &RecursionAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(env.Tasks, SkillRecursion),
		runner:       env.Runner,
	}
}

// Analyze performs the recursion. Progress is recorded once per location;
// cancelling ctx stops the scan before the next location and stores nothing.
func (a *RecursionAnalyzer) Analyze(ctx context.Context, taskID int64, params []byte) error {
	var req models.RecursionRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.Dataset == "" {
		return fmt.Errorf("%w: recursion tasks need a dataset", ErrInvalidRequest)
	}
	if req.Trajectory != nil {
		return fmt.Errorf("%w: recursion tasks read their trajectory from the dataset", ErrInvalidRequest)
	}

	logger.Infow("Starting recursion analysis", "task_id", taskID, "dataset", req.Dataset)

	if err := a.Tasks.MarkAsRunning(taskID); err != nil {
		return err
	}

	result, err := a.runner.Run(ctx, req, func(done, total int) {
		a.UpdateTaskProgress(taskID, done, total, 0)
	})
	if err != nil {
		return err
	}

	summary, err := json.Marshal(map[string]any{
		"run_id":    result.RunID,
		"locations": len(result.Revisits),
		"visits":    len(result.RevisitStats),
	})
	if err != nil {
		return fmt.Errorf("failed to encode result summary: %w", err)
	}

	if err := a.Tasks.MarkAsCompleted(taskID, string(summary)); err != nil {
		return err
	}

	logger.Infow("Recursion analysis completed", "task_id", taskID, "run_id", result.RunID)
	return nil
}
