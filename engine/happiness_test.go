package engine

import (
	"testing"

	"github.com/opencampus/teamforge/domain"
)

// TestHappinessScoreBounds is Testable Property 4: every happiness value
// stays within [0,1].
func TestHappinessScoreBounds(t *testing.T) {
	eval := NewHappinessEvaluator(domain.ScoreMax)
	for chosen := domain.ScoreMin; chosen <= domain.ScoreMax; chosen++ {
		for studentMax := domain.ScoreMin; studentMax <= domain.ScoreMax; studentMax++ {
			hs := eval.Score(1, chosen, studentMax)
			if hs.HSProject < 0 || hs.HSProject > 1 {
				t.Fatalf("HSProject out of [0,1]: %v (chosen=%d)", hs.HSProject, chosen)
			}
			if hs.HSPoll < 0 || hs.HSPoll > 1 {
				t.Fatalf("HSPoll out of [0,1]: %v (chosen=%d studentMax=%d)", hs.HSPoll, chosen, studentMax)
			}
		}
	}
}

func TestHappinessScoreExtremes(t *testing.T) {
	eval := NewHappinessEvaluator(domain.ScoreMax)
	worst := eval.Score(1, domain.ScoreMin, domain.ScoreMax)
	if worst.HSProject != 0 {
		t.Fatalf("minimum chosen score should normalize to 0, got %v", worst.HSProject)
	}
	best := eval.Score(1, domain.ScoreMax, domain.ScoreMax)
	if best.HSProject != 1 {
		t.Fatalf("maximum chosen score should normalize to 1, got %v", best.HSProject)
	}
}

func TestHappinessIconBreakpoints(t *testing.T) {
	cases := []struct {
		hs   float64
		want string
	}{
		{0.0, "very bad"},
		{0.2, "very bad"},
		{0.3, "bad"},
		{0.5, "neutral"},
		{0.7, "good"},
		{1.0, "very good"},
	}
	for _, c := range cases {
		if got := HappinessIcon(c.hs); got != c.want {
			t.Fatalf("HappinessIcon(%v) = %q, want %q", c.hs, got, c.want)
		}
	}
}

func TestHappinessEvaluatorSummarizeAveragesMembers(t *testing.T) {
	eval := NewHappinessEvaluator(domain.ScoreMax)
	members := []HappinessScore{
		{StudentID: 1, HSProject: 1.0, HSPoll: 1.0},
		{StudentID: 2, HSProject: 0.0, HSPoll: 0.0},
	}
	summary := eval.Summarize(members)
	if summary.MeanHSProject != 0.5 {
		t.Fatalf("mean project happiness = %v, want 0.5", summary.MeanHSProject)
	}
	if summary.Icon != HappinessIcon(0.5) {
		t.Fatalf("summary icon = %q, want %q", summary.Icon, HappinessIcon(0.5))
	}
}

func TestHappinessEvaluatorSummarizeEmpty(t *testing.T) {
	eval := NewHappinessEvaluator(domain.ScoreMax)
	summary := eval.Summarize(nil)
	if summary != (TeamSummary{}) {
		t.Fatalf("expected zero-value summary for no members, got %+v", summary)
	}
}

func TestStudentMaxScore(t *testing.T) {
	answers := []domain.ProjectAnswer{{Score: 2}, {Score: 5}, {Score: 3}}
	if got := StudentMaxScore(answers); got != 5 {
		t.Fatalf("StudentMaxScore = %d, want 5", got)
	}
	if got := StudentMaxScore(nil); got != 0 {
		t.Fatalf("StudentMaxScore(nil) = %d, want 0", got)
	}
}
