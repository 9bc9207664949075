package cpsat

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Params configures a single SolveWithParams call: the wall-clock budget,
// the number of parallel search workers (0 means "use every core", 1 means
// strictly sequential search — the case Testable Property 5 in spec.md §8
// relies on for determinism), and the relative optimality gap at which the
// search may stop early even without proving optimality.
type Params struct {
	Timeout    time.Duration
	NumWorkers int
	GapLimit   float64
}

// BranchAndBoundSolver is the Model Builder's search engine: a depth-first
// branch-and-bound over the 0/1 cube with bound-consistency propagation and
// a knapsack-relaxation pruning bound, structured after the teacher's
// CDCLSolver (reset-on-Solve, SolveWithTimeout as the primitive Solve calls
// into, a pluggable BranchHeuristic in place of VSIDS).
type BranchAndBoundSolver struct {
	heuristic BranchHeuristic
	stats     SolverStatistics
}

// NewBranchAndBoundSolver creates a solver with the default branch
// heuristic.
func NewBranchAndBoundSolver() *BranchAndBoundSolver {
	return &BranchAndBoundSolver{heuristic: NewConstraintPressureHeuristic()}
}

// NewBranchAndBoundSolverWithHeuristic allows swapping the branch
// heuristic, the same extension point the teacher exposes via
// NewCDCLSolverWithConfig.
func NewBranchAndBoundSolverWithHeuristic(h BranchHeuristic) *BranchAndBoundSolver {
	return &BranchAndBoundSolver{heuristic: h}
}

func (s *BranchAndBoundSolver) Name() string { return "branch-and-bound" }

func (s *BranchAndBoundSolver) Reset() {
	s.stats = SolverStatistics{}
	s.heuristic.Reset()
}

func (s *BranchAndBoundSolver) GetStatistics() SolverStatistics { return s.stats }

// Solve runs with an unbounded timeout and a single worker.
func (s *BranchAndBoundSolver) Solve(m *Model) *SolverResult {
	return s.SolveWithTimeout(m, 0)
}

// SolveWithTimeout runs with a single worker and the given wall-clock
// budget, satisfying the Solver interface.
func (s *BranchAndBoundSolver) SolveWithTimeout(m *Model, timeout time.Duration) *SolverResult {
	return s.SolveWithParams(context.Background(), m, Params{Timeout: timeout, NumWorkers: 1})
}

// SolveWithParams is the full entry point the Solver Driver (engine
// package) uses: it honors num_workers and relative_gap_limit from
// spec.md §4.6 in addition to the wall-clock budget.
func (s *BranchAndBoundSolver) SolveWithParams(ctx context.Context, m *Model, p Params) *SolverResult {
	start := time.Now()
	s.stats = SolverStatistics{}

	if len(m.Vars) == 0 {
		return &SolverResult{Status: StatusModelInvalid, Error: errModelHasNoVariables}
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	workers := p.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	engine := &searchEngine{
		model:      m,
		heuristic:  s.heuristic,
		ctx:        ctx,
		gapLimit:   p.GapLimit,
		rootBound:  rootUpperBound(m),
		bestObj:    newAtomicBest(),
		nodes:      new(int64),
		branches:   new(int64),
		prunes:     new(int64),
		incumbents: new(int64),
	}

	frontier := splitFrontier(m, s.heuristic, workers)
	engine.bestObj.obj.Store(minInt64)

	var wg sync.WaitGroup
	for _, node := range frontier {
		wg.Add(1)
		go func(initial Assignment) {
			defer wg.Done()
			stack := newBranchStack(len(m.Vars))
			for idx, v := range initial {
				stack.push(idx, v)
			}
			engine.search(stack)
		}(node)
	}
	wg.Wait()

	s.stats = SolverStatistics{
		Nodes:       atomic.LoadInt64(engine.nodes),
		Branches:    atomic.LoadInt64(engine.branches),
		Prunes:      atomic.LoadInt64(engine.prunes),
		Incumbents:  atomic.LoadInt64(engine.incumbents),
		TimeElapsed: time.Since(start).Nanoseconds(),
		WorkersUsed: len(frontier),
	}

	res := &SolverResult{Statistics: s.stats}
	best := engine.bestObj.obj.Load()
	if best == minInt64 {
		if ctx.Err() != nil {
			res.Status = StatusInfeasible // timeout with no feasible solution found
		} else {
			res.Status = StatusInfeasible
		}
		return res
	}

	res.Objective = int(best)
	res.Assignment = engine.bestObj.snapshot()
	if ctx.Err() != nil || engine.stoppedEarly.Load() {
		res.Status = StatusFeasible
		res.BestBound = engine.rootBound
	} else {
		res.Status = StatusOptimal
		res.BestBound = res.Objective
	}
	return res
}

const minInt64 = int64(-1) << 62

// atomicBest holds the best incumbent found so far, shared across worker
// goroutines.
type atomicBest struct {
	obj  atomic.Int64
	mu   sync.Mutex
	best Assignment
}

func newAtomicBest() *atomicBest { return &atomicBest{} }

// tryUpdate installs candidate as the new incumbent if it beats the current
// one, returning whether it did.
func (b *atomicBest) tryUpdate(obj int, assignment Assignment) bool {
	for {
		cur := b.obj.Load()
		if int64(obj) <= cur {
			return false
		}
		if b.obj.CompareAndSwap(cur, int64(obj)) {
			b.mu.Lock()
			b.best = assignment
			b.mu.Unlock()
			return true
		}
	}
}

func (b *atomicBest) snapshot() Assignment {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make(Assignment, len(b.best))
	for k, v := range b.best {
		cp[k] = v
	}
	return cp
}

// searchEngine carries the shared, read-mostly state for one Solve call;
// every worker goroutine holds its own branchStack but shares this.
type searchEngine struct {
	model     *Model
	heuristic BranchHeuristic
	ctx       context.Context
	gapLimit  float64
	rootBound int

	bestObj *atomicBest

	nodes, branches, prunes, incumbents *int64
	stoppedEarly                        atomic.Bool
}

// search runs sequential depth-first branch-and-bound starting from the
// (possibly non-empty) partial assignment already on stack.
func (e *searchEngine) search(stack *branchStack) {
	if e.ctx.Err() != nil || e.stoppedEarly.Load() {
		return
	}
	atomic.AddInt64(e.nodes, 1)

	if atomic.LoadInt64(e.nodes)%1024 == 0 {
		if e.ctx.Err() != nil {
			return
		}
		if e.gapLimit > 0 {
			best := e.bestObj.obj.Load()
			if best != minInt64 && e.rootBound > 0 {
				gap := 1 - float64(best)/float64(e.rootBound)
				if gap < 0 {
					gap = -gap
				}
				if gap <= e.gapLimit {
					e.stoppedEarly.Store(true)
					return
				}
			}
		}
	}

	if !feasible(e.model, stack) {
		atomic.AddInt64(e.prunes, 1)
		return
	}

	candidates := unassigned(e.model, stack)
	defer globalVarPool.putIntSlice(candidates)
	if len(candidates) == 0 {
		obj := objectiveValue(e.model, stack)
		if e.bestObj.tryUpdate(obj, stack.snapshot()) {
			atomic.AddInt64(e.incumbents, 1)
		}
		return
	}

	ub := upperBound(e.model, stack, candidates)
	if best := e.bestObj.obj.Load(); best != minInt64 && int64(ub) <= best {
		atomic.AddInt64(e.prunes, 1)
		return
	}

	pick := candidates[e.heuristic.ChooseVariable(e.model, candidates, stack.assignment)]
	preferTrue := e.heuristic.PreferTrue(e.model, pick, stack.assignment)

	atomic.AddInt64(e.branches, 1)
	first, second := true, false
	if !preferTrue {
		first, second = false, true
	}

	stack.push(pick, first)
	e.search(stack)
	stack.pop()

	if e.ctx.Err() != nil || e.stoppedEarly.Load() {
		return
	}

	stack.push(pick, second)
	e.search(stack)
	stack.pop()
}

// feasible reports whether every constraint can still be satisfied given
// the stack's current partial assignment: the bound-consistency check that
// plays the role of the teacher's unit propagation.
func feasible(m *Model, stack *branchStack) bool {
	for _, c := range m.Constraints {
		fixed, loRemain, hiRemain := 0, 0, 0
		for _, t := range c.Expr.Terms {
			if val, ok := stack.assignment[t.Var.Index]; ok {
				if val {
					fixed += t.Coeff
				}
				continue
			}
			if t.Coeff > 0 {
				hiRemain += t.Coeff
			} else {
				loRemain += t.Coeff
			}
		}
		lo, hi := fixed+loRemain, fixed+hiRemain
		switch c.Rel {
		case LE:
			if lo > c.Bound {
				return false
			}
		case GE:
			if hi < c.Bound {
				return false
			}
		case EQ:
			if lo > c.Bound || hi < c.Bound {
				return false
			}
		}
	}
	return true
}

// unassigned returns the indices of variables with no value on the stack
// yet, pulled from the package-level pool to cut allocations.
func unassigned(m *Model, stack *branchStack) []int {
	out := globalVarPool.getIntSlice(len(m.Vars) - stack.depth())
	for _, v := range m.Vars {
		if _, ok := stack.assignment[v.Index]; !ok {
			out = append(out, v.Index)
		}
	}
	return out
}

// upperBound is the knapsack relaxation bound: the objective's fixed
// contribution plus the best every remaining variable could possibly add,
// the same relaxation idea behind the teacher's MaxSAT binary search, here
// applied directly to a maximize-the-weighted-sum objective.
func upperBound(m *Model, stack *branchStack, candidates []int) int {
	fixed := objectiveValue(m, stack)
	bound := make(map[int]bool, len(candidates))
	for _, idx := range candidates {
		bound[idx] = true
	}
	extra := 0
	for _, t := range m.Objective.Expr.Terms {
		if !bound[t.Var.Index] {
			continue
		}
		if t.Coeff > 0 {
			extra += t.Coeff
		}
	}
	return fixed + extra
}

func rootUpperBound(m *Model) int {
	all := make([]int, len(m.Vars))
	for i := range m.Vars {
		all[i] = i
	}
	return upperBound(m, newBranchStack(len(m.Vars)), all)
}

// objectiveValue sums the objective over the variables currently fixed to
// true on the stack.
func objectiveValue(m *Model, stack *branchStack) int {
	total := 0
	for _, t := range m.Objective.Expr.Terms {
		if stack.assignment[t.Var.Index] {
			total += t.Coeff
		}
	}
	return total
}

// splitFrontier expands the root node breadth-first until there are at
// least `workers` open partial assignments (or the tree runs out), so each
// worker goroutine gets an independent slice of the search space. With
// workers == 1 it returns a single empty assignment, which is what makes
// num_workers=1 fully sequential and therefore deterministic.
func splitFrontier(m *Model, h BranchHeuristic, workers int) []Assignment {
	if workers <= 1 || len(m.Vars) == 0 {
		return []Assignment{{}}
	}

	type node struct {
		assignment Assignment
	}
	frontier := []node{{assignment: Assignment{}}}

	for len(frontier) < workers {
		next := make([]node, 0, len(frontier)*2)
		progressed := false
		for _, n := range frontier {
			stack := newBranchStack(len(m.Vars))
			for idx, v := range n.assignment {
				stack.push(idx, v)
			}
			candidates := unassigned(m, stack)
			if len(candidates) == 0 || !feasible(m, stack) {
				globalVarPool.putIntSlice(candidates)
				next = append(next, n)
				continue
			}
			pick := candidates[h.ChooseVariable(m, candidates, stack.assignment)]
			globalVarPool.putIntSlice(candidates)
			progressed = true
			for _, val := range []bool{true, false} {
				child := make(Assignment, len(n.assignment)+1)
				for k, v := range n.assignment {
					child[k] = v
				}
				child[pick] = val
				next = append(next, node{assignment: child})
			}
		}
		frontier = next
		if !progressed {
			break
		}
	}

	out := make([]Assignment, len(frontier))
	for i, n := range frontier {
		out[i] = n.assignment
	}
	return out
}
