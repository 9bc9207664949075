package engine

import (
	"math/rand"

	"github.com/opencampus/teamforge/domain"
)

// levelWeights is the weighted distribution used for randomized level
// defaults: approximately 45% level 3 (solid), 25% level 2 (ambitious),
// 20% level 1 (unspecified), 10% level 4 (minimal-pass) — weights chosen
// to seed realistic mixes for testing, not derived from any real cohort.
var levelWeights = []struct {
	level  int
	weight int
}{
	{domain.LevelSolid, 45},
	{domain.LevelAmbitious, 25},
	{domain.LevelUnspecified, 20},
	{domain.LevelMinimalPass, 10},
}

// DefaultGenerator is the Default Generator: it synthesizes poll entries
// for students with no submitted poll, so the Model Builder always sees a
// dense preference matrix. Rand is injectable for deterministic tests, the
// same randomness-injection point the design notes call for.
type DefaultGenerator struct {
	Rand *rand.Rand
}

// NewDefaultGenerator builds a generator with its own source seeded from
// seed (pass a fixed seed in tests for reproducibility).
func NewDefaultGenerator(seed int64) *DefaultGenerator {
	return &DefaultGenerator{Rand: rand.New(rand.NewSource(seed))}
}

// FillResult holds counts of what the Default Generator synthesized. No
// function in this package fills it in or returns it.
type FillResult struct {
	PollsCreated          int
	ProjectAnswersCreated int
	LevelAnswersCreated   int
}

// PollsToCreate returns a generated Poll for every student absent from
// existingPollByStudent. The store persists these (letting gorm assign
// IDs) before calling AnswersToCreate, since project/level answers key off
// the poll's real ID.
func (g *DefaultGenerator) PollsToCreate(students []domain.Student, existingPollByStudent map[uint]domain.Poll) []domain.Poll {
	var out []domain.Poll
	for _, s := range students {
		if _, ok := existingPollByStudent[s.ID]; ok {
			continue
		}
		out = append(out, domain.Poll{StudentID: s.ID, Student: s, IsGenerated: true})
	}
	return out
}

// AnswersToCreate computes, given the now-complete set of polls (including
// any just created by PollsToCreate), which ProjectAnswer and LevelAnswer
// rows are still missing so that every (poll, project) pair has a score
// and every poll has a level. It is pure: callers persist the returned
// rows. Calling it again on an already-dense matrix returns nil, which is
// what gives the Default Generator its idempotence (Testable Property 6).
func (g *DefaultGenerator) AnswersToCreate(
	polls []domain.Poll,
	projects []domain.Project,
	hasLevelAnswer map[uint]bool, // keyed by poll ID
	hasProjectAnswer map[[2]uint]bool, // keyed by [pollID, projectID]
	randomDefaults bool,
) (newAnswers []domain.ProjectAnswer, newLevels []domain.LevelAnswer) {
	for _, poll := range polls {
		for _, p := range projects {
			if hasProjectAnswer[[2]uint{poll.ID, p.ID}] {
				continue
			}
			newAnswers = append(newAnswers, domain.ProjectAnswer{
				PollID:    poll.ID,
				ProjectID: p.ID,
				Score:     g.scoreDefault(randomDefaults),
			})
		}
		if !hasLevelAnswer[poll.ID] {
			newLevels = append(newLevels, domain.LevelAnswer{
				PollID: poll.ID,
				Level:  g.levelDefault(randomDefaults),
			})
		}
	}
	return newAnswers, newLevels
}

func (g *DefaultGenerator) scoreDefault(randomDefaults bool) int {
	if !randomDefaults {
		return domain.ScoreDefault
	}
	return domain.ScoreMin + g.Rand.Intn(domain.ScoreMax-domain.ScoreMin+1)
}

func (g *DefaultGenerator) levelDefault(randomDefaults bool) int {
	if !randomDefaults {
		return domain.LevelDefault
	}
	total := 0
	for _, w := range levelWeights {
		total += w.weight
	}
	r := g.Rand.Intn(total)
	for _, w := range levelWeights {
		if r < w.weight {
			return w.level
		}
		r -= w.weight
	}
	return domain.LevelDefault
}
