// Package cpsat is a small boolean-optimization engine: decision variables in
// {0,1}, linear (in)equality constraints over them, and a single maximize
// objective, solved by branch-and-bound search. It plays the role a binding
// to Google's CP-SAT would play in the rest of this module, without the
// external dependency.
package cpsat

import (
	"fmt"
	"strings"
)

// Rel is the relation of a linear constraint.
type Rel int

const (
	LE Rel = iota // <=
	GE            // >=
	EQ            // ==
)

func (r Rel) String() string {
	switch r {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "=="
	}
}

// BoolVar is an indexed 0/1 decision variable. Index is its position in the
// owning Model's variable slice and is also the index the search uses to
// track assignment state, mirroring the way the teacher's Literal carries a
// Variable name that keys directly into Assignment.
type BoolVar struct {
	Index int
	Name  string
}

func (v BoolVar) String() string { return v.Name }

// Term is one coeff*var summand of a LinearExpr.
type Term struct {
	Coeff int
	Var   BoolVar
}

// LinearExpr is a sum of weighted boolean variables.
type LinearExpr struct {
	Terms []Term
}

// NewLinearExpr builds an expression from terms.
func NewLinearExpr(terms ...Term) LinearExpr {
	return LinearExpr{Terms: terms}
}

// Add returns a new expression with one more coeff*var term. It always
// copies rather than extending e's backing array in place, so branching
// two different terms onto the same base expression (common when building
// a family of related constraints from one shared column sum) never makes
// one branch's append clobber the other's.
func (e LinearExpr) Add(coeff int, v BoolVar) LinearExpr {
	terms := make([]Term, len(e.Terms)+1)
	copy(terms, e.Terms)
	terms[len(e.Terms)] = Term{Coeff: coeff, Var: v}
	return LinearExpr{Terms: terms}
}

// Bounds returns the minimum and maximum value the expression can take over
// all 0/1 assignments (i.e. with every negative-coefficient term at 1 and
// every positive-coefficient term at 0, and vice versa).
func (e LinearExpr) Bounds() (lo, hi int) {
	for _, t := range e.Terms {
		if t.Coeff > 0 {
			hi += t.Coeff
		} else {
			lo += t.Coeff
		}
	}
	return lo, hi
}

func (e LinearExpr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = fmt.Sprintf("%d*%s", t.Coeff, t.Var.Name)
	}
	return strings.Join(parts, " + ")
}

// LinearConstraint is Expr Rel Bound, e.g. Σx <= 5.
type LinearConstraint struct {
	ID    int // unique identifier for tracking, assigned on AddConstraint
	Name  string
	Expr  LinearExpr
	Rel   Rel
	Bound int
}

func (c *LinearConstraint) String() string {
	return fmt.Sprintf("(%s) %s %d", c.Expr.String(), c.Rel, c.Bound)
}

// Satisfied reports whether the constraint holds for the given total.
func (c *LinearConstraint) Satisfied(total int) bool {
	switch c.Rel {
	case LE:
		return total <= c.Bound
	case GE:
		return total >= c.Bound
	default:
		return total == c.Bound
	}
}

// ObjectiveVariant is the Model Builder's soft-constraint dispatch, a sum
// type switched once at model construction rather than per variable.
type ObjectiveVariant int

const (
	VariantPreference ObjectiveVariant = iota + 1
	VariantLevelGroup
	VariantCombined
)

// Objective is the single maximize term-set of a Model.
type Objective struct {
	Expr    LinearExpr
	Variant ObjectiveVariant
}

// Model is the analogue of the teacher's CNF: an ordered set of variables
// and constraints plus one objective.
type Model struct {
	Vars        []BoolVar
	Constraints []*LinearConstraint
	Objective   Objective
	nextID      int
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{nextID: 1}
}

// NewBoolVar allocates and registers a new decision variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	v := BoolVar{Index: len(m.Vars), Name: name}
	m.Vars = append(m.Vars, v)
	return v
}

// AddConstraint registers a linear constraint and assigns it a unique ID,
// mirroring CNF.AddClause's ID-on-add convention.
func (m *Model) AddConstraint(name string, expr LinearExpr, rel Rel, bound int) *LinearConstraint {
	c := &LinearConstraint{ID: m.nextID, Name: name, Expr: expr, Rel: rel, Bound: bound}
	m.nextID++
	m.Constraints = append(m.Constraints, c)
	return c
}

// Maximize sets the model's objective.
func (m *Model) Maximize(expr LinearExpr, variant ObjectiveVariant) {
	m.Objective = Objective{Expr: expr, Variant: variant}
}

func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model{%d vars, %d constraints}\n", len(m.Vars), len(m.Constraints))
	for _, c := range m.Constraints {
		fmt.Fprintf(&b, "  %s\n", c.String())
	}
	fmt.Fprintf(&b, "  maximize %s\n", m.Objective.Expr.String())
	return b.String()
}

// Assignment maps a variable index to its solved 0/1 value.
type Assignment map[int]bool

// Value returns the assignment's value for v, defaulting to false for an
// unassigned variable (should not occur in a returned SolverResult).
func (a Assignment) Value(v BoolVar) bool { return a[v.Index] }

// Status is the terminal state of a Solve call.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// SolverStatistics tracks search performance, mirroring the teacher's
// SolverStatistics shape (counts of search events plus elapsed time).
type SolverStatistics struct {
	Nodes        int64
	Branches     int64
	Prunes       int64
	Incumbents   int64
	TimeElapsed  int64 // nanoseconds
	WorkersUsed  int
}

// SolverResult is the outcome of a Solve call.
type SolverResult struct {
	Status     Status
	Assignment Assignment
	Objective  int
	BestBound  int
	Statistics SolverStatistics
	Error      error
}

// SolutionGap is |1 - objective/bestBound|, 0 when BestBound == Objective.
func (r *SolverResult) SolutionGap() float64 {
	if r.BestBound == 0 {
		if r.Objective == 0 {
			return 0
		}
		return 1
	}
	gap := 1 - float64(r.Objective)/float64(r.BestBound)
	if gap < 0 {
		gap = -gap
	}
	return gap
}
