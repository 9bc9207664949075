package engine

import (
	"math/rand"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

// SolutionExtractor is the Solution Extractor: it reads back the solver's
// boolean assignment, remaps indices to IDs, and produces the Team rows to
// persist. Rand is injectable for deterministic initial-contact selection
// in tests.
//
// Every solver instance index p already corresponds 1:1 to a real
// ProjectInstance created by the Instance Expander before the model was
// built (the same bijection the Index Remapper holds), so extraction is a
// direct lookup rather than a reallocation: an instance index that ends up
// with no assigned students simply stays an empty, still-existing slot.
type SolutionExtractor struct {
	Rand *rand.Rand
}

// NewSolutionExtractor builds an extractor seeded from seed.
func NewSolutionExtractor(seed int64) *SolutionExtractor {
	return &SolutionExtractor{Rand: rand.New(rand.NewSource(seed))}
}

// Extract walks the solved assignment in lexicographic (p,s) order. For
// each instance index p with at least one assigned student, it assigns
// every member to that instance and flags exactly one as the initial
// contact, chosen uniformly at random among the members.
func (e *SolutionExtractor) Extract(
	assignment cpsat.Assignment,
	x func(p, s int) cpsat.BoolVar,
	numInstances, numStudents int,
	instanceIdx *IndexMap, // instance dense-index -> ProjectInstance.ID
	studentIdx *IndexMap, // student dense-index -> Student.ID
	instancesByID map[uint]domain.ProjectInstance,
	scoreOf func(p, s int) float64,
) []domain.Team {
	var teams []domain.Team
	for p := 0; p < numInstances; p++ {
		var members []int
		for s := 0; s < numStudents; s++ {
			if assignment.Value(x(p, s)) {
				members = append(members, s)
			}
		}
		if len(members) == 0 {
			continue
		}

		instance := instancesByID[instanceIdx.IDOf(p)]
		contact := members[e.Rand.Intn(len(members))]
		for _, s := range members {
			teams = append(teams, domain.Team{
				ProjectID:         instance.ProjectID,
				ProjectInstanceID: instance.ID,
				StudentID:         studentIdx.IDOf(s),
				IsInitialContact:  s == contact,
				Score:             scoreOf(p, s),
			})
		}
	}
	return teams
}
