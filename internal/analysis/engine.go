package analysis

import (
	"context"
	"sort"

	"github.com/jengzang/recurse-backend-go/internal/logger"
	"github.com/jengzang/recurse-backend-go/internal/repository"
)

// Analyzer is the interface that all analysis skills must implement
type Analyzer interface {
	// Analyze performs the analysis for a given task
	// taskID: the analysis task ID
	// params: the task's JSON parameters
	Analyze(ctx context.Context, taskID int64, params []byte) error

	// GetName returns the name of the analyzer
	GetName() string
}

// Env holds the collaborators analyzers are built from
type Env struct {
	Tasks  *repository.AnalysisTaskRepository
	Runner *RecursionRunner
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	Tasks *repository.AnalysisTaskRepository
	Name  string
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(tasks *repository.AnalysisTaskRepository, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		Tasks: tasks,
		Name:  name,
	}
}

// GetName returns the analyzer name
func (a *BaseAnalyzer) GetName() string {
	return a.Name
}

// UpdateTaskProgress records progress of a task. Failures are logged and
// otherwise ignored so that a busy database does not abort the analysis.
func (a *BaseAnalyzer) UpdateTaskProgress(taskID int64, processed, total, failed int) {
	if err := a.Tasks.UpdateProgress(taskID, processed, total, failed); err != nil {
		logger.Warnw("Failed to update task progress", "task_id", taskID, "skill", a.Name, "error", err)
	}
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(env *Env) Analyzer

// AnalyzerRegistry maps skill names to analyzer factories
var AnalyzerRegistry = make(map[string]AnalyzerFactory)

// RegisterAnalyzer registers an analyzer factory for a skill name
func RegisterAnalyzer(skillName string, factory AnalyzerFactory) {
	AnalyzerRegistry[skillName] = factory
}

// GetAnalyzer retrieves an analyzer instance for a skill name
func GetAnalyzer(skillName string, env *Env) Analyzer {
	factory, ok := AnalyzerRegistry[skillName]
	if !ok {
		return nil
	}
	return factory(env)
}

// IsRegisteredSkill checks if an analyzer exists for a skill
func IsRegisteredSkill(skillName string) bool {
	_, ok := AnalyzerRegistry[skillName]
	return ok
}

// Skills lists the registered skill names in order
func Skills() []string {
	names := make([]string, 0, len(AnalyzerRegistry))
	for name := range AnalyzerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
