package cpsat

import "time"

// Solver attempts to find an assignment maximizing a Model's objective
// subject to its constraints.
type Solver interface {
	// Solve runs until optimal, proven infeasible, or the solver's own
	// default time budget elapses.
	Solve(m *Model) *SolverResult
	// SolveWithTimeout solves with an explicit wall-clock budget. timeout
	// <= 0 means unbounded.
	SolveWithTimeout(m *Model, timeout time.Duration) *SolverResult
	// GetStatistics returns the statistics of the most recent Solve call.
	GetStatistics() SolverStatistics
	// Reset clears solver state for reuse on a new Model.
	Reset()
	// Name returns the solver implementation name.
	Name() string
}

// BranchHeuristic selects the next unassigned variable to branch on and
// which value to try first, the direct analogue of the teacher's
// Heuristic interface (ChooseVariable/Update/Reset/Name) generalized from
// clause-activity pressure to constraint-tightness pressure.
type BranchHeuristic interface {
	// ChooseVariable returns the index into candidates to branch on next.
	ChooseVariable(m *Model, candidates []int, partial Assignment) int
	// PreferTrue reports whether the true branch should be explored first
	// for the given variable.
	PreferTrue(m *Model, varIndex int, partial Assignment) bool
	// Reset clears any heuristic state between solves.
	Reset()
	// Name returns the heuristic's name.
	Name() string
}
