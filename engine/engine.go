// Package engine wires the Preference Store, Default Generator, Instance
// Expander, Index Remapper, Model Builder, Solver Driver, Solution
// Extractor and Happiness Evaluator into the external interface (§6) the
// surrounding application consumes: GenerateTeams, GetTeamsForView,
// GeneratePollDataForStudentsWithoutPoll, SavePollData.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencampus/teamforge/cpsat"
	"github.com/opencampus/teamforge/domain"
)

// Store is the subset of the store package's Store the engine depends on,
// kept as an interface so the engine package can be tested against a fake
// without importing gorm.
type Store interface {
	LoadSettings() (domain.Settings, error)
	SaveSettings(domain.Settings) error
	LoadInfo() (domain.Info, error)
	UpdateInfo(func(*domain.Info)) error

	ListProjects() ([]domain.Project, error)
	ListStudents() ([]domain.Student, error)
	ListActiveStudents() ([]domain.Student, error)
	ListPolls() ([]domain.Poll, error)
	ListProjectAnswers() ([]domain.ProjectAnswer, error)
	ListLevelAnswers() ([]domain.LevelAnswer, error)
	ListProjectInstances() ([]domain.ProjectInstance, error)
	ListTeams() ([]domain.Team, error)
	CountTeams() (int64, error)

	CreatePolls([]domain.Poll) ([]domain.Poll, error)
	CreateProjectAnswers([]domain.ProjectAnswer) error
	CreateLevelAnswers([]domain.LevelAnswer) error
	UpsertPollData(studentID uint, scores map[uint]int, level int) error

	RunGenerationCycle(
		buildInstances func([]domain.Project, domain.Settings) ([]domain.ProjectInstance, error),
		solve func([]domain.ProjectInstance, []domain.Student, domain.Settings) ([]domain.Team, error),
	) error
}

// Engine is the assembled team-assignment engine.
type Engine struct {
	Store     Store
	Generator *DefaultGenerator
	Extractor *SolutionExtractor
	Driver    *SolverDriver
	Builder   ModelBuilder
	Happiness *HappinessEvaluator

	// BaseContext is called once per solve to derive the context passed to
	// the solver driver; defaults to context.Background() when nil.
	BaseContext func() context.Context
}

// NewEngine wires an Engine from a Store and a random seed shared by the
// Default Generator and the Solution Extractor.
func NewEngine(st Store, seed int64, log *logrus.Logger) *Engine {
	return &Engine{
		Store:     st,
		Generator: NewDefaultGenerator(seed),
		Extractor: NewSolutionExtractor(seed + 1),
		Driver:    NewSolverDriver(log),
		Happiness: NewHappinessEvaluator(domain.ScoreMax),
	}
}

func (e *Engine) ctx() context.Context {
	if e.BaseContext != nil {
		return e.BaseContext()
	}
	return context.Background()
}

// GeneratePollDataForStudentsWithoutPoll is the idempotent fill operation:
// it creates a Poll (is_generated=true) plus ProjectAnswers and a
// LevelAnswer for every student missing them.
func (e *Engine) GeneratePollDataForStudentsWithoutPoll() error {
	students, err := e.Store.ListStudents()
	if err != nil {
		return NewError("GeneratePollDataForStudentsWithoutPoll", NotReady, err)
	}
	projects, err := e.Store.ListProjects()
	if err != nil {
		return NewError("GeneratePollDataForStudentsWithoutPoll", NotReady, err)
	}
	polls, err := e.Store.ListPolls()
	if err != nil {
		return err
	}
	settings, err := e.Store.LoadSettings()
	if err != nil {
		return err
	}

	pollByStudent := make(map[uint]domain.Poll, len(polls))
	for _, p := range polls {
		pollByStudent[p.StudentID] = p
	}

	newPolls := e.Generator.PollsToCreate(students, pollByStudent)
	created, err := e.Store.CreatePolls(newPolls)
	if err != nil {
		return err
	}

	allPolls := append(append([]domain.Poll(nil), polls...), created...)

	answers, err := e.Store.ListProjectAnswers()
	if err != nil {
		return err
	}
	levels, err := e.Store.ListLevelAnswers()
	if err != nil {
		return err
	}
	hasAnswer := make(map[[2]uint]bool, len(answers))
	for _, a := range answers {
		hasAnswer[[2]uint{a.PollID, a.ProjectID}] = true
	}
	hasLevel := make(map[uint]bool, len(levels))
	for _, l := range levels {
		hasLevel[l.PollID] = true
	}

	newAnswers, newLevels := e.Generator.AnswersToCreate(allPolls, projects, hasLevel, hasAnswer, settings.UseRandomPollDefaults)
	if err := e.Store.CreateProjectAnswers(newAnswers); err != nil {
		return err
	}
	return e.Store.CreateLevelAnswers(newLevels)
}

// SavePollData upserts one student's poll submission.
func (e *Engine) SavePollData(studentID uint, scores map[uint]int, level int) error {
	return e.Store.UpsertPollData(studentID, scores, level)
}

// GenerateTeams performs the atomic regeneration cycle of §5. It returns
// (false, nil) with no side effect if Polls or ProjectAnswers are empty.
func (e *Engine) GenerateTeams() (bool, error) {
	polls, err := e.Store.ListPolls()
	if err != nil {
		return false, err
	}
	answers, err := e.Store.ListProjectAnswers()
	if err != nil {
		return false, err
	}
	if len(polls) == 0 || len(answers) == 0 {
		return false, nil
	}

	err = e.Store.RunGenerationCycle(
		func(projects []domain.Project, settings domain.Settings) ([]domain.ProjectInstance, error) {
			return ExpandInstances(projects, settings)
		},
		func(instances []domain.ProjectInstance, students []domain.Student, settings domain.Settings) ([]domain.Team, error) {
			return e.solveOnce(instances, students, settings, answers)
		},
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) solveOnce(
	instances []domain.ProjectInstance,
	students []domain.Student,
	settings domain.Settings,
	answers []domain.ProjectAnswer,
) ([]domain.Team, error) {
	levels, err := e.Store.ListLevelAnswers()
	if err != nil {
		return nil, err
	}
	polls, err := e.Store.ListPolls()
	if err != nil {
		return nil, err
	}

	pollByStudent := make(map[uint]uint, len(polls)) // studentID -> pollID
	for _, p := range polls {
		pollByStudent[p.StudentID] = p.ID
	}
	levelByPoll := make(map[uint]int, len(levels))
	for _, l := range levels {
		levelByPoll[l.PollID] = l.Level
	}
	scoreByPollProject := make(map[[2]uint]int, len(answers))
	for _, a := range answers {
		scoreByPollProject[[2]uint{a.PollID, a.ProjectID}] = a.Score
	}

	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	studentIDs := make([]uint, len(students))
	for i, s := range students {
		studentIDs[i] = s.ID
	}
	studentIdx := NewIndexMap(studentIDs)

	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	instanceIDs := make([]uint, len(instances))
	instancesByID := make(map[uint]domain.ProjectInstance, len(instances))
	for i, inst := range instances {
		instanceIDs[i] = inst.ID
		instancesByID[inst.ID] = inst
	}
	instanceIdx := NewIndexMap(instanceIDs)

	studentInputs := make([]StudentInput, len(students))
	for i, s := range students {
		pollID, hasPoll := pollByStudent[s.ID]
		byInstance := make(map[int]int, len(instances))
		for p, inst := range instances {
			if hasPoll {
				if score, ok := scoreByPollProject[[2]uint{pollID, inst.ProjectID}]; ok {
					byInstance[p] = score
				}
			}
		}
		level := domain.LevelDefault
		if hasPoll {
			if l, ok := levelByPoll[pollID]; ok {
				level = l
			}
		}
		studentInputs[i] = StudentInput{
			ID:              s.ID,
			IsSideAttribute: s.IsSideAttribute(),
			Level:           level,
			ScoreByInstance: byInstance,
		}
	}

	model, _, err := e.Builder.Build(BuildInput{
		Students:     studentInputs,
		NumInstances: len(instances),
		Settings:     settings,
		MaxScore:     domain.ScoreMax,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, runID, err := e.Driver.Run(e.ctx(), model, settings)
	elapsed := time.Since(start)
	if err != nil {
		_ = e.Store.UpdateInfo(func(i *domain.Info) {
			i.ResultInfo = err.Error()
		})
		return nil, err
	}

	// Recover the x[p,s] variable lookup from the same layout Build used:
	// instances first (used(p) aux vars), then the p*s matrix in
	// instance-major order.
	lookup := func(p, s int) cpsat.BoolVar {
		return model.Vars[len(instances)+p*len(students)+s]
	}
	scoreOf := func(p, s int) float64 {
		return float64(studentInputs[s].ScoreByInstance[p])
	}

	teams := e.Extractor.Extract(result.Assignment, lookup, len(instances), len(students), instanceIdx, studentIdx, instancesByID, scoreOf)

	_ = e.Store.UpdateInfo(func(i *domain.Info) {
		i.ResultInfo = ResultInfo(runID, result, elapsed)
	})

	return teams, nil
}

// TeamView is one row of the read-only team roster the surrounding
// application renders.
type TeamView struct {
	InstanceLabel string
	ProjectName   string
	Members       []MemberView
}

// MemberView is one student's display row within a TeamView.
type MemberView struct {
	Name             string
	IsInitialContact bool
	IsHidden         bool // side-attribute, when settings.SideAttributeHidden
	IsInactive       bool
}

// TeamsForView is the §6 get_teams_for_view() read model: team rosters
// with display flags plus aggregate happiness.
type TeamsForView struct {
	Teams     []TeamView
	Happiness TeamSummary
}

// GetTeamsForView assembles the read-only team roster view.
func (e *Engine) GetTeamsForView() (TeamsForView, error) {
	teams, err := e.Store.ListTeams()
	if err != nil {
		return TeamsForView{}, err
	}
	settings, err := e.Store.LoadSettings()
	if err != nil {
		return TeamsForView{}, err
	}
	answers, err := e.Store.ListProjectAnswers()
	if err != nil {
		return TeamsForView{}, err
	}
	polls, err := e.Store.ListPolls()
	if err != nil {
		return TeamsForView{}, err
	}

	pollByStudent := make(map[uint]uint, len(polls))
	for _, p := range polls {
		pollByStudent[p.StudentID] = p.ID
	}
	answersByPoll := make(map[uint][]domain.ProjectAnswer)
	for _, a := range answers {
		answersByPoll[a.PollID] = append(answersByPoll[a.PollID], a)
	}

	byInstance := make(map[uint][]domain.Team)
	order := make([]uint, 0)
	for _, t := range teams {
		if _, ok := byInstance[t.ProjectInstanceID]; !ok {
			order = append(order, t.ProjectInstanceID)
		}
		byInstance[t.ProjectInstanceID] = append(byInstance[t.ProjectInstanceID], t)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var views []TeamView
	var allScores []HappinessScore
	for _, instID := range order {
		members := byInstance[instID]
		var mv []MemberView
		for _, t := range members {
			hidden := settings.SideAttributeHidden && t.Student.IsSideAttribute()
			mv = append(mv, MemberView{
				Name:             t.Student.FullName(),
				IsInitialContact: t.IsInitialContact,
				IsHidden:         hidden,
				IsInactive:       !t.Student.IsActive,
			})

			pollID := pollByStudent[t.StudentID]
			studentMax := StudentMaxScore(answersByPoll[pollID])
			allScores = append(allScores, e.Happiness.Score(t.StudentID, int(t.Score), studentMax))
		}
		views = append(views, TeamView{
			InstanceLabel: members[0].ProjectInstance.Label(),
			ProjectName:   members[0].Project.Name,
			Members:       mv,
		})
	}

	return TeamsForView{Teams: views, Happiness: e.Happiness.Summarize(allScores)}, nil
}
