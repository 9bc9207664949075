package engine

import (
	"testing"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

func TestComputeSizingEvenSplit(t *testing.T) {
	s, err := ComputeSizing(24, 6, 0, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RequiredUsed != 4 {
		t.Fatalf("R = %d, want 4 (24/6)", s.RequiredUsed)
	}
	if s.LoSize != 6 || s.HiSize != 6 {
		t.Fatalf("lo/hi = %d/%d, want 6/6 for an even split", s.LoSize, s.HiSize)
	}
}

func TestComputeSizingRemainderWidensHi(t *testing.T) {
	s, err := ComputeSizing(25, 6, 0, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LoSize != 6 || s.HiSize != 7 {
		t.Fatalf("lo/hi = %d/%d, want 6/7 for 25 students over teams of 6", s.LoSize, s.HiSize)
	}
}

// TestComputeSizingMCorrection covers the m-correction: when the natural R
// (numStudents/m) would exceed the number of available instances, m must be
// recomputed upward so R shrinks to fit.
func TestComputeSizingMCorrection(t *testing.T) {
	s, err := ComputeSizing(30, 2, 0, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RequiredUsed != 2 {
		t.Fatalf("R = %d, want 2 (capped at NumInstances)", s.RequiredUsed)
	}
	if s.TeamMinMember != 15 {
		t.Fatalf("corrected m = %d, want 15 (30/2)", s.TeamMinMember)
	}
}

func TestComputeSizingUnsolvableWhenNoStudentsFitAnyInstance(t *testing.T) {
	_, err := ComputeSizing(0, 4, 0, 6)
	if err == nil {
		t.Fatal("expected error for zero students")
	}
	if kind, ok := KindOf(err); !ok || kind != Unsolvable {
		t.Fatalf("expected Unsolvable, got %v", err)
	}
}

// TestComputeSizingSuppressesH3WhenSideSplitsEvenly covers Open Question 2:
// H3 is suppressed when the side-attribute count divides evenly across R
// (lo==hi) and there is at least one side-attribute student.
func TestComputeSizingSuppressesH3WhenSideSplitsEvenly(t *testing.T) {
	s, err := ComputeSizing(24, 6, 4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.SuppressH3 {
		t.Fatalf("expected SuppressH3 when NumSide/R divides evenly (4/4=1), got loSide=%d hiSide=%d", s.LoSide, s.HiSide)
	}
}

func TestComputeSizingKeepsH3WhenSideIsUneven(t *testing.T) {
	s, err := ComputeSizing(24, 6, 5, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SuppressH3 {
		t.Fatalf("expected H3 active when side count (5) doesn't divide evenly by R (4)")
	}
}

func buildCountingInput(nStudents, nInstances, teamMin int) BuildInput {
	students := make([]StudentInput, nStudents)
	for i := range students {
		scores := make(map[int]int, nInstances)
		for p := 0; p < nInstances; p++ {
			scores[p] = domain.ScoreDefault
		}
		students[i] = StudentInput{ID: uint(i + 1), Level: domain.LevelSolid, ScoreByInstance: scores}
	}
	return BuildInput{
		Students:     students,
		NumInstances: nInstances,
		MaxScore:     domain.ScoreMax,
		Settings: domain.Settings{
			TeamMinMember:     teamMin,
			AssignmentVariant: domain.VariantPreference,
		},
	}
}

func TestModelBuilderBuildProducesExpectedVariableLayout(t *testing.T) {
	in := buildCountingInput(12, 2, 6)
	model, sizing, err := ModelBuilder{}.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantVars := sizing.NumInstances + sizing.NumInstances*sizing.NumStudents
	if len(model.Vars) != wantVars {
		t.Fatalf("len(Vars) = %d, want %d (used(p) + p*s matrix)", len(model.Vars), wantVars)
	}

	// H1: exactly NumStudents constraints of the exactly-one-instance shape.
	h1Count := 0
	for _, c := range model.Constraints {
		if c.Rel == cpsat.EQ && c.Bound == 1 {
			h1Count++
		}
	}
	if h1Count < sizing.NumStudents {
		t.Fatalf("found %d EQ-1 constraints, want at least %d (one per student for H1)", h1Count, sizing.NumStudents)
	}
}

func TestModelBuilderH4RequiresExactUsedCount(t *testing.T) {
	in := buildCountingInput(12, 4, 6)
	model, sizing, err := ModelBuilder{}.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var h4 *cpsat.LinearConstraint
	for _, c := range model.Constraints {
		if c.Name == "H4" {
			h4 = c
		}
	}
	if h4 == nil {
		t.Fatal("expected an H4 constraint")
	}
	if h4.Rel != cpsat.EQ || h4.Bound != sizing.RequiredUsed {
		t.Fatalf("H4 = (%s %d), want (== %d)", h4.Rel, h4.Bound, sizing.RequiredUsed)
	}
	if len(h4.Expr.Terms) != sizing.NumInstances {
		t.Fatalf("H4 has %d terms, want %d (one used(p) per instance)", len(h4.Expr.Terms), sizing.NumInstances)
	}
}

func TestModelBuilderKeepsH3WhenNoSideAttributeStudents(t *testing.T) {
	in := buildCountingInput(12, 2, 6)
	_, sizing, err := ModelBuilder{}.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sizing.SuppressH3 {
		t.Fatal("expected H3 to stay active (bounds 0..0) when no students carry the side attribute")
	}
}

func TestModelBuilderAddsH5WhenBothAmbitiousAndMinimalPassPresent(t *testing.T) {
	in := buildCountingInput(12, 2, 6)
	for i := range in.Students {
		if i%2 == 0 {
			in.Students[i].Level = domain.LevelAmbitious
		} else {
			in.Students[i].Level = domain.LevelMinimalPass
		}
	}
	in.Settings.AssignmentVariant = domain.VariantLevelGroup

	model, sizing, err := ModelBuilder{}.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h5Count := 0
	for _, c := range model.Constraints {
		if len(c.Name) >= 2 && c.Name[:2] == "H5" {
			h5Count++
		}
	}
	if h5Count != sizing.NumInstances {
		t.Fatalf("found %d H5 constraints, want %d (one per instance)", h5Count, sizing.NumInstances)
	}
	if model.Objective.Variant != cpsat.VariantLevelGroup {
		t.Fatalf("objective variant = %v, want VariantLevelGroup", model.Objective.Variant)
	}
}

func TestModelBuilderInfeasibleSizingPropagatesError(t *testing.T) {
	in := buildCountingInput(3, 4, 6)
	_, _, err := ModelBuilder{}.Build(in)
	if err == nil {
		t.Fatal("expected error when fewer students than team_min_member across any instance")
	}
}
