package cpsat

// constraintPressureHeuristic chooses the unassigned variable that appears
// in the most model constraints, counted once per model regardless of the
// partial assignment (the branch-and-bound analogue of
// VSIDS: pick the variable under the most pressure), and prefers the value
// with the larger objective coefficient, so the search finds good
// incumbents early and prunes the rest of the tree faster.
type constraintPressureHeuristic struct {
	involvement []int // varIndex -> number of constraints referencing it, computed once per model
}

// NewConstraintPressureHeuristic builds the default branch heuristic.
func NewConstraintPressureHeuristic() BranchHeuristic {
	return &constraintPressureHeuristic{}
}

func (h *constraintPressureHeuristic) ensureInvolvement(m *Model) {
	if h.involvement != nil && len(h.involvement) == len(m.Vars) {
		return
	}
	h.involvement = make([]int, len(m.Vars))
	for _, c := range m.Constraints {
		for _, t := range c.Expr.Terms {
			h.involvement[t.Var.Index]++
		}
	}
}

func (h *constraintPressureHeuristic) ChooseVariable(m *Model, candidates []int, partial Assignment) int {
	h.ensureInvolvement(m)
	best := 0
	bestScore := -1
	for i, idx := range candidates {
		score := h.involvement[idx]
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func (h *constraintPressureHeuristic) PreferTrue(m *Model, varIndex int, partial Assignment) bool {
	for _, t := range m.Objective.Expr.Terms {
		if t.Var.Index == varIndex {
			return t.Coeff >= 0
		}
	}
	return true
}

func (h *constraintPressureHeuristic) Reset() { h.involvement = nil }

func (h *constraintPressureHeuristic) Name() string { return "constraint-pressure" }
