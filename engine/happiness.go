package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/opencampus/teamforge/domain"
)

// HappinessScore is a single student's realized satisfaction with their
// assigned project, both against the global maximum score and against
// their own personal maximum across all projects.
type HappinessScore struct {
	StudentID uint
	HSProject float64 // against global max_score
	HSPoll    float64 // against the student's own max score
	Icon      string
}

// HappinessIcon returns the categorical breakpoint label for a 0..1
// happiness value: (<=0.2 very bad), (0.2-0.4 bad), (0.4-0.6 neutral),
// (0.6-0.8 good), (>0.8 very good).
func HappinessIcon(hs float64) string {
	switch {
	case hs <= 0.2:
		return "very bad"
	case hs <= 0.4:
		return "bad"
	case hs <= 0.6:
		return "neutral"
	case hs <= 0.8:
		return "good"
	default:
		return "very good"
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// HappinessEvaluator is the Happiness Evaluator: it derives per-student and
// per-team satisfaction scores from a realized assignment and the original
// preferences.
type HappinessEvaluator struct {
	MaxScore int // global max_score, e.g. domain.ScoreMax
}

// NewHappinessEvaluator builds an evaluator against the fixed global
// maximum poll score.
func NewHappinessEvaluator(maxScore int) *HappinessEvaluator {
	return &HappinessEvaluator{MaxScore: maxScore}
}

// Score computes a single student's HappinessScore given the score they
// received for their assigned project and the maximum score they
// personally gave to any project in their poll.
func (h *HappinessEvaluator) Score(studentID uint, chosenScore, studentMaxScore int) HappinessScore {
	hsProject := h.normalize(chosenScore, h.MaxScore)
	hsPoll := h.normalize(chosenScore, studentMaxScore)
	return HappinessScore{
		StudentID: studentID,
		HSProject: round2(hsProject),
		HSPoll:    round2(hsPoll),
		Icon:      HappinessIcon(hsProject),
	}
}

func (h *HappinessEvaluator) normalize(chosen, max int) float64 {
	if max <= 1 {
		return 0
	}
	// A chosen score above max is capped, keeping the result in [0,1].
	return math.Min(1, float64(chosen-1)/float64(max-1))
}

// TeamSummary is the team-level aggregate the view layer renders.
type TeamSummary struct {
	MeanHSProject float64
	MeanHSPoll    float64
	Icon          string
}

// Summarize aggregates a team's member scores by arithmetic mean, using
// gonum's stat.Mean the same way the rest of the module reaches for gonum
// for numeric work instead of hand-rolling it.
func (h *HappinessEvaluator) Summarize(members []HappinessScore) TeamSummary {
	if len(members) == 0 {
		return TeamSummary{}
	}
	projectScores := make([]float64, len(members))
	pollScores := make([]float64, len(members))
	for i, m := range members {
		projectScores[i] = m.HSProject
		pollScores[i] = m.HSPoll
	}
	meanProject := round2(stat.Mean(projectScores, nil))
	meanPoll := round2(stat.Mean(pollScores, nil))
	return TeamSummary{
		MeanHSProject: meanProject,
		MeanHSPoll:    meanPoll,
		Icon:          HappinessIcon(meanProject),
	}
}

// StudentMaxScore returns the maximum score a student assigned across a
// set of their ProjectAnswers, used as the HSPoll denominator.
func StudentMaxScore(answers []domain.ProjectAnswer) int {
	max := 0
	for _, a := range answers {
		if a.Score > max {
			max = a.Score
		}
	}
	return max
}
