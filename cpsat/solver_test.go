package cpsat

import (
	"context"
	"testing"
	"time"
)

func TestBranchAndBoundSolverKnapsack(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	c := m.NewBoolVar("c")

	weight := NewLinearExpr().Add(2, a).Add(3, b).Add(4, c)
	m.AddConstraint("capacity", weight, LE, 5)
	m.Maximize(NewLinearExpr().Add(3, a).Add(4, b).Add(5, c), VariantPreference)

	solver := NewBranchAndBoundSolver()
	result := solver.Solve(m)

	if result.Status != StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", result.Status)
	}
	if result.Objective != 7 {
		t.Fatalf("objective = %d, want 7 (b+a: weight 5, value 7)", result.Objective)
	}
}

func TestBranchAndBoundSolverInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	m.AddConstraint("contradiction-upper", NewLinearExpr().Add(1, a), LE, 0)
	m.AddConstraint("contradiction-lower", NewLinearExpr().Add(1, a), GE, 1)
	m.Maximize(NewLinearExpr().Add(1, a), VariantPreference)

	result := NewBranchAndBoundSolver().Solve(m)
	if result.Status != StatusInfeasible {
		t.Fatalf("status = %s, want INFEASIBLE", result.Status)
	}
}

func TestBranchAndBoundSolverDeterministicSingleWorker(t *testing.T) {
	m := NewModel()
	vars := make([]BoolVar, 6)
	expr := NewLinearExpr()
	obj := NewLinearExpr()
	for i := range vars {
		vars[i] = m.NewBoolVar("v")
		expr = expr.Add(1, vars[i])
		obj = obj.Add(i+1, vars[i])
	}
	m.AddConstraint("pick-three", expr, EQ, 3)
	m.Maximize(obj, VariantPreference)

	solver := NewBranchAndBoundSolver()
	var first *SolverResult
	for i := 0; i < 5; i++ {
		result := solver.SolveWithParams(context.Background(), m, Params{NumWorkers: 1})
		if first == nil {
			first = result
			continue
		}
		if result.Objective != first.Objective {
			t.Fatalf("objective changed across runs: %d vs %d", result.Objective, first.Objective)
		}
		for idx, v := range result.Assignment {
			if first.Assignment[idx] != v {
				t.Fatalf("assignment differs across deterministic single-worker runs at var %d", idx)
			}
		}
	}
}

func TestBranchAndBoundSolverTimeoutWithoutFeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	m.AddConstraint("impossible-upper", NewLinearExpr().Add(1, a), LE, -1)
	m.Maximize(NewLinearExpr().Add(1, a), VariantPreference)

	result := NewBranchAndBoundSolver().SolveWithTimeout(m, 10*time.Millisecond)
	if result.Status != StatusInfeasible {
		t.Fatalf("status = %s, want INFEASIBLE", result.Status)
	}
}

func TestLinearExprBoundsIndependentBranches(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	base := NewLinearExpr().Add(1, a)

	left := base.Add(1, b)
	right := base.Add(2, b)

	if len(left.Terms) != 2 || left.Terms[1].Coeff != 1 {
		t.Fatalf("left branch corrupted: %+v", left.Terms)
	}
	if len(right.Terms) != 2 || right.Terms[1].Coeff != 2 {
		t.Fatalf("right branch corrupted: %+v", right.Terms)
	}
}
