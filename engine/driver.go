package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

// SolverDriver is the Solver Driver: a process-wide singleton guarding
// reentrant solves with an atomic flag, exactly as the design notes
// describe the global-singleton-as-acquire/release-guard mapping.
type SolverDriver struct {
	running atomic.Bool
	log     *logrus.Logger
}

// NewSolverDriver builds a driver logging through the given logger (pass
// logrus.StandardLogger() to use the package default).
func NewSolverDriver(log *logrus.Logger) *SolverDriver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SolverDriver{log: log}
}

// IsRunning reports whether a solve is currently in flight.
func (d *SolverDriver) IsRunning() bool { return d.running.Load() }

// Run acquires the singleton flag, solves m with settings-derived limits,
// and releases the flag on every exit path. Returns *Error{Kind:
// AlreadyRunning} if a solve is already in flight, *Error{Kind: Unsolvable}
// if the terminal status is INFEASIBLE/MODEL_INVALID or a timeout produced
// no feasible solution. The returned run ID correlates this call's log line
// with the ResultInfo string the caller persists alongside it.
func (d *SolverDriver) Run(ctx context.Context, m *cpsat.Model, settings domain.Settings) (*cpsat.SolverResult, string, error) {
	if !d.running.CompareAndSwap(false, true) {
		return nil, "", NewError("SolverDriver.Run", AlreadyRunning, nil)
	}
	defer d.running.Store(false)

	runID := uuid.NewString()

	solver := cpsat.NewBranchAndBoundSolver()
	params := cpsat.Params{
		Timeout:    time.Duration(settings.MaxRuntimeSeconds) * time.Second,
		NumWorkers: settings.NumWorkers,
		GapLimit:   settings.RelativeGapLimit,
	}

	start := time.Now()
	result := solver.SolveWithParams(ctx, m, params)
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"run_id":         runID,
		"status":         result.Status.String(),
		"objective":      result.Objective,
		"best_bound":     result.BestBound,
		"wall_time_ms":   elapsed.Milliseconds(),
		"solution_count": result.Statistics.Incumbents,
		"gap":            result.SolutionGap(),
		"nodes":          result.Statistics.Nodes,
		"workers_used":   result.Statistics.WorkersUsed,
	}
	d.log.WithFields(fields).Info("team generation solve finished")

	if result.Status == cpsat.StatusInfeasible || result.Status == cpsat.StatusModelInvalid {
		return result, runID, NewError("SolverDriver.Run", Unsolvable, fmt.Errorf("solver status %s (run %s)", result.Status, runID))
	}
	return result, runID, nil
}

// ResultInfo renders the diagnostic snippet persisted to Info.ResultInfo,
// tagged with the same runID SolverDriver.Run logged this solve under.
func ResultInfo(runID string, result *cpsat.SolverResult, elapsed time.Duration) string {
	return fmt.Sprintf(
		"run=%s status=%s objective=%d best_bound=%d wall_time=%s solutions=%d gap=%.4f nodes=%d",
		runID, result.Status, result.Objective, result.BestBound, elapsed,
		result.Statistics.Incumbents, result.SolutionGap(), result.Statistics.Nodes,
	)
}
