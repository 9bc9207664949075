package engine

import (
	"fmt"
	"math"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

// StudentInput is everything the Model Builder needs about one student:
// their Student ID, side-attribute flag, ambition level, and raw poll
// score per instance index.
type StudentInput struct {
	ID              uint
	IsSideAttribute bool
	Level           int
	// ScoreByInstance maps instance dense-index to the student's raw poll
	// score (1..maxScore) for that instance's parent project.
	ScoreByInstance map[int]int
}

// BuildInput is the fully-prepared, index-space data the Model Builder
// consumes: students and instances are addressed by dense index
// (StudentInput.ID is carried along but Build does not use it).
type BuildInput struct {
	Students      []StudentInput // index i corresponds to student dense-index i
	NumInstances  int
	Settings      domain.Settings
	MaxScore      int
}

// Sizing captures the derived quantities §4.5 defines from N_s, N_p, N_w
// and m, including the m-correction when R would exceed N_p.
type Sizing struct {
	NumStudents    int
	NumInstances   int
	NumSide        int
	TeamMinMember  int // m, possibly corrected
	RequiredUsed   int // R
	LoSize, HiSize int
	LoSide, HiSide int
	SuppressH3     bool
}

// ComputeSizing derives R, m, lo/hi bounds from the raw inputs, applying
// the m-correction and the R=0 early-exit per Open Question 1.
func ComputeSizing(numStudents, numInstances, numSide, teamMinMember int) (Sizing, error) {
	if teamMinMember <= 0 {
		return Sizing{}, NewError("ComputeSizing", InvalidConfig, fmt.Errorf("team_min_member must be positive, got %d", teamMinMember))
	}

	m := teamMinMember
	r := numStudents / m
	if r > numInstances {
		r = numInstances
		if r > 0 {
			m = numStudents / r
		}
	}
	if r == 0 || m == 0 {
		return Sizing{}, NewError("ComputeSizing", Unsolvable, fmt.Errorf("no feasible team size for %d students over %d instances", numStudents, numInstances))
	}

	hiSize := m
	if numStudents%m != 0 {
		hiSize = m + 1
	}

	loSide, hiSide := 0, 0
	suppress := true
	if r > 0 {
		loSide = numSide / r
		hiSide = int(math.Ceil(float64(numSide) / float64(r)))
		suppress = loSide == hiSide && numSide > 0
	}

	return Sizing{
		NumStudents:   numStudents,
		NumInstances:  numInstances,
		NumSide:       numSide,
		TeamMinMember: m,
		RequiredUsed:  r,
		LoSize:        m,
		HiSize:        hiSize,
		LoSide:        loSide,
		HiSide:        hiSide,
		SuppressH3:    suppress,
	}, nil
}

// ModelBuilder translates a BuildInput into a cpsat.Model implementing
// H1-H5 and the three soft-objective variants of §4.5.
type ModelBuilder struct{}

// Build constructs the boolean matrix x[p,s], the used(p) auxiliaries, and
// every hard/soft constraint. Variable layout: instances first (used(p)
// aux vars), then the p*s matrix in row-major (instance-major) order, so
// x(p,s) = vars[numInstances + p*numStudents + s].
func (ModelBuilder) Build(in BuildInput) (*cpsat.Model, Sizing, error) {
	sizing, err := ComputeSizing(len(in.Students), in.NumInstances, countSide(in.Students), in.Settings.TeamMinMember)
	if err != nil {
		return nil, Sizing{}, err
	}

	m := cpsat.NewModel()
	nS, nP := len(in.Students), in.NumInstances

	used := make([]cpsat.BoolVar, nP)
	for p := 0; p < nP; p++ {
		used[p] = m.NewBoolVar(fmt.Sprintf("used[%d]", p))
	}

	x := make([][]cpsat.BoolVar, nP)
	for p := 0; p < nP; p++ {
		x[p] = make([]cpsat.BoolVar, nS)
		for s := 0; s < nS; s++ {
			x[p][s] = m.NewBoolVar(fmt.Sprintf("x[%d,%d]", p, s))
		}
	}

	// H1: each student in exactly one instance.
	for s := 0; s < nS; s++ {
		expr := cpsat.NewLinearExpr()
		for p := 0; p < nP; p++ {
			expr = expr.Add(1, x[p][s])
		}
		m.AddConstraint(fmt.Sprintf("H1[student=%d]", s), expr, cpsat.EQ, 1)
	}

	for p := 0; p < nP; p++ {
		// used(p) <=> size(p) > 0, encoded with two linear
		// implications: size <= hi*used (forces size=0 whenever
		// used=0, and so used=1 whenever size>0) and size >= lo*used
		// (forces size>=lo whenever used=1).
		upperExpr := cloneExpr(sizeColumn(x, p))
		upperExpr = upperExpr.Add(-sizing.HiSize, used[p])
		m.AddConstraint(fmt.Sprintf("H2upper[p=%d]", p), upperExpr, cpsat.LE, 0)

		lowerExpr := cloneExpr(sizeColumn(x, p))
		lowerExpr = lowerExpr.Add(-sizing.LoSize, used[p])
		m.AddConstraint(fmt.Sprintf("H2lower[p=%d]", p), lowerExpr, cpsat.GE, 0)

		if !sizing.SuppressH3 {
			sideExpr := cpsat.NewLinearExpr()
			for s := 0; s < nS; s++ {
				if in.Students[s].IsSideAttribute {
					sideExpr = sideExpr.Add(1, x[p][s])
				}
			}
			sideExpr = sideExpr.Add(-sizing.HiSide, used[p])
			m.AddConstraint(fmt.Sprintf("H3upper[p=%d]", p), sideExpr, cpsat.LE, 0)

			sideExprLo := cpsat.NewLinearExpr()
			for s := 0; s < nS; s++ {
				if in.Students[s].IsSideAttribute {
					sideExprLo = sideExprLo.Add(1, x[p][s])
				}
			}
			sideExprLo = sideExprLo.Add(-sizing.LoSide, used[p])
			m.AddConstraint(fmt.Sprintf("H3lower[p=%d]", p), sideExprLo, cpsat.GE, 0)
		}
	}

	// H4: exactly R instances used.
	usedExpr := cpsat.NewLinearExpr()
	for p := 0; p < nP; p++ {
		usedExpr = usedExpr.Add(1, used[p])
	}
	m.AddConstraint("H4", usedExpr, cpsat.EQ, sizing.RequiredUsed)

	buildObjective(m, x, in, sizing)

	return m, sizing, nil
}

// cloneExpr returns an expression with its own copy of e's term slice.
func cloneExpr(e cpsat.LinearExpr) cpsat.LinearExpr {
	cp := make([]cpsat.Term, len(e.Terms))
	copy(cp, e.Terms)
	return cpsat.LinearExpr{Terms: cp}
}

// sizeColumn is Σ_s x[p,s] for one instance p.
func sizeColumn(x [][]cpsat.BoolVar, p int) cpsat.LinearExpr {
	expr := cpsat.NewLinearExpr()
	for _, v := range x[p] {
		expr = expr.Add(1, v)
	}
	return expr
}

func countSide(students []StudentInput) int {
	n := 0
	for _, s := range students {
		if s.IsSideAttribute {
			n++
		}
	}
	return n
}

// normalizedScore maps a raw 1..maxScore score onto 0..100, per
// round((raw-1)*100/(maxScore-1)).
func normalizedScore(raw, maxScore int) int {
	if maxScore <= 1 {
		return 0
	}
	return int(math.Round(float64(raw-1) * 100 / float64(maxScore-1)))
}

func buildObjective(m *cpsat.Model, x [][]cpsat.BoolVar, in BuildInput, sizing Sizing) {
	nP, nS := len(x), len(in.Students)
	expr := cpsat.NewLinearExpr()

	switch in.Settings.AssignmentVariant {
	case domain.VariantLevelGroup:
		addLevelGroupTerms(m, &expr, x, in, sizing, 1)
	case domain.VariantCombined:
		for p := 0; p < nP; p++ {
			for s := 0; s < nS; s++ {
				raw, ok := in.Students[s].ScoreByInstance[p]
				if !ok {
					continue
				}
				score := normalizedScore(raw, in.MaxScore)
				score += levelSkew(in.Students[s].Level)
				if score != 0 {
					expr = expr.Add(score, x[p][s])
				}
			}
		}
		addLevelGroupTerms(m, &expr, x, in, sizing, in.Settings.LevelGroupFactor)
	default: // VariantPreference and anything unrecognized falls back to it
		for p := 0; p < nP; p++ {
			for s := 0; s < nS; s++ {
				raw, ok := in.Students[s].ScoreByInstance[p]
				if !ok {
					continue
				}
				score := normalizedScore(raw, in.MaxScore)
				if score != 0 {
					expr = expr.Add(score, x[p][s])
				}
			}
		}
	}

	variant := cpsat.VariantPreference
	switch in.Settings.AssignmentVariant {
	case domain.VariantLevelGroup:
		variant = cpsat.VariantLevelGroup
	case domain.VariantCombined:
		variant = cpsat.VariantCombined
	}
	m.Maximize(expr, variant)
}

// levelSkew is the +-1 score-unit adjustment variant 3 applies: ambitious
// (level 2) students get a small upward nudge, minimal-pass (level 4)
// students a small downward one.
func levelSkew(level int) int {
	switch level {
	case domain.LevelAmbitious:
		return 1
	case domain.LevelMinimalPass:
		return -1
	default:
		return 0
	}
}

// addLevelGroupTerms layers in has_level(p,l) indicator rewards for
// l in {2,3,4}: a fresh boolean per (instance, level) is set true (and
// rewarded) when that level's headcount in the instance reaches m or m+1,
// via the same two-implication trick used for used(p), each indicator
// weighted by factor.
func addLevelGroupTerms(m *cpsat.Model, expr *cpsat.LinearExpr, x [][]cpsat.BoolVar, in BuildInput, sizing Sizing, factor int) {
	nP, nS := len(x), len(in.Students)
	levels := []int{domain.LevelAmbitious, domain.LevelSolid, domain.LevelMinimalPass}

	for p := 0; p < nP; p++ {
		for _, lvl := range levels {
			count := cpsat.NewLinearExpr()
			n := 0
			for s := 0; s < nS; s++ {
				if in.Students[s].Level == lvl {
					count = count.Add(1, x[p][s])
					n++
				}
			}
			if n == 0 {
				continue
			}
			indicator := m.NewBoolVar(fmt.Sprintf("hasLevel[p=%d,l=%d]", p, lvl))

			// indicator => count >= lo_s: count - lo_s*indicator >= 0
			lower := count
			lower = lower.Add(-sizing.LoSize, indicator)
			m.AddConstraint(fmt.Sprintf("levelLower[p=%d,l=%d]", p, lvl), lower, cpsat.GE, 0)

			// count <= hi_s always holds via H2; cap indicator so it can
			// only go true when count is nonzero: indicator <= count.
			upper := cpsat.NewLinearExpr().Add(1, indicator)
			for _, t := range count.Terms {
				upper = upper.Add(-t.Coeff, t.Var)
			}
			m.AddConstraint(fmt.Sprintf("levelUpper[p=%d,l=%d]", p, lvl), upper, cpsat.LE, 0)

			*expr = expr.Add(factor, indicator)
		}

		// H5: no instance contains both a level-2 and level-4 student.
		has2 := cpsat.NewLinearExpr()
		has4 := cpsat.NewLinearExpr()
		for s := 0; s < nS; s++ {
			if in.Students[s].Level == domain.LevelAmbitious {
				has2 = has2.Add(1, x[p][s])
			}
			if in.Students[s].Level == domain.LevelMinimalPass {
				has4 = has4.Add(1, x[p][s])
			}
		}
		if len(has2.Terms) > 0 && len(has4.Terms) > 0 {
			h2flag := m.NewBoolVar(fmt.Sprintf("hasAny2[p=%d]", p))
			h4flag := m.NewBoolVar(fmt.Sprintf("hasAny4[p=%d]", p))

			l2 := cloneExpr(has2).Add(-len(has2.Terms), h2flag)
			m.AddConstraint(fmt.Sprintf("h2flagUpper[p=%d]", p), l2, cpsat.LE, 0)
			l2lo := cloneExpr(has2).Add(-1, h2flag)
			m.AddConstraint(fmt.Sprintf("h2flagLower[p=%d]", p), l2lo, cpsat.GE, 1-len(has2.Terms))

			l4 := cloneExpr(has4).Add(-len(has4.Terms), h4flag)
			m.AddConstraint(fmt.Sprintf("h4flagUpper[p=%d]", p), l4, cpsat.LE, 0)
			l4lo := cloneExpr(has4).Add(-1, h4flag)
			m.AddConstraint(fmt.Sprintf("h4flagLower[p=%d]", p), l4lo, cpsat.GE, 1-len(has4.Terms))

			h5 := cpsat.NewLinearExpr().Add(1, h2flag).Add(1, h4flag)
			m.AddConstraint(fmt.Sprintf("H5[p=%d]", p), h5, cpsat.LE, 1)
		}
	}
}
