package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

func trivialModel() *cpsat.Model {
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	m.AddConstraint("c", cpsat.NewLinearExpr().Add(1, a), cpsat.LE, 1)
	m.Maximize(cpsat.NewLinearExpr().Add(1, a), cpsat.VariantPreference)
	return m
}

func TestSolverDriverRunReturnsResultAndClearsFlag(t *testing.T) {
	d := NewSolverDriver(nil)
	settings := domain.DefaultSettings()
	settings.MaxRuntimeSeconds = 5

	result, runID, err := d.Run(context.Background(), trivialModel(), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != cpsat.StatusOptimal {
		t.Fatalf("status = %s, want OPTIMAL", result.Status)
	}
	if runID == "" {
		t.Fatal("expected a non-empty run ID")
	}
	if d.IsRunning() {
		t.Fatal("driver should not be marked running after Run returns")
	}
}

// TestSolverDriverRejectsReentrantRun exercises the AlreadyRunning guard: a
// Run call made while another is still holding the singleton flag must be
// rejected rather than interleaved.
func TestSolverDriverRejectsReentrantRun(t *testing.T) {
	d := NewSolverDriver(nil)
	d.running.Store(true)
	defer d.running.Store(false)

	_, _, err := d.Run(context.Background(), trivialModel(), domain.DefaultSettings())
	if err == nil {
		t.Fatal("expected AlreadyRunning error on reentrant Run")
	}
	if kind, ok := KindOf(err); !ok || kind != AlreadyRunning {
		t.Fatalf("expected AlreadyRunning, got %v", err)
	}
}

func TestSolverDriverInfeasibleReturnsUnsolvableError(t *testing.T) {
	d := NewSolverDriver(nil)
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	m.AddConstraint("upper", cpsat.NewLinearExpr().Add(1, a), cpsat.LE, 0)
	m.AddConstraint("lower", cpsat.NewLinearExpr().Add(1, a), cpsat.GE, 1)
	m.Maximize(cpsat.NewLinearExpr().Add(1, a), cpsat.VariantPreference)

	settings := domain.DefaultSettings()
	settings.MaxRuntimeSeconds = 5
	_, _, err := d.Run(context.Background(), m, settings)
	if err == nil {
		t.Fatal("expected an error for an infeasible model")
	}
	if kind, ok := KindOf(err); !ok || kind != Unsolvable {
		t.Fatalf("expected Unsolvable, got %v", err)
	}
}

func TestSolverDriverConcurrentRunsDoNotDeadlock(t *testing.T) {
	d := NewSolverDriver(nil)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settings := domain.DefaultSettings()
			settings.MaxRuntimeSeconds = 5
			d.Run(context.Background(), trivialModel(), settings)
		}()
	}
	wg.Wait()
	if d.IsRunning() {
		t.Fatal("driver should be idle once all goroutines finish")
	}
}
