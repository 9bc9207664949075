// Package domain holds the persisted entities the engine reads and writes:
// the catalog, the roster, the poll data students submit, the realized
// assignment, and the two process-wide singletons that configure a run.
package domain

import (
	"strconv"
	"time"
)

// StudyProgram is one of the closed set of study-program tags a Student may
// carry. SideAttributeProgram is the "wing" tag: students on it flip
// Student.IsSideAttribute, which drives the H3 dispersion constraint.
type StudyProgram string

const (
	ProgramInformatik              StudyProgram = "041"
	ProgramWirtschaftsinformatik   StudyProgram = "042"
	ProgramVerwaltungsinformatik   StudyProgram = "048"
	ProgramWirtschaftsingenieur    StudyProgram = "072"
	SideAttributeProgram           StudyProgram = ProgramWirtschaftsingenieur
)

// StudyPrograms is the closed set validated against on import and on
// student creation.
var StudyPrograms = map[StudyProgram]struct{ Short, Name string }{
	ProgramInformatik:            {"AI", "Informatik"},
	ProgramWirtschaftsinformatik: {"WI", "Wirtschaftsinformatik"},
	ProgramVerwaltungsinformatik: {"VI", "Verwaltungsinformatik"},
	ProgramWirtschaftsingenieur:  {"WIng", "Wirtschaftsingenieurwesen"},
}

// IsValidStudyProgram reports whether tag belongs to the closed set.
func IsValidStudyProgram(tag string) bool {
	_, ok := StudyPrograms[StudyProgram(tag)]
	return ok
}

// Project is a catalog entry: one project a team can be assigned to.
type Project struct {
	ID           uint   `gorm:"primaryKey"`
	PID          string `gorm:"size:1;uniqueIndex;not null"` // single uppercase letter A-Z
	Name         string `gorm:"size:255;not null"`
	Description  string `gorm:"size:4096"`
	Technologies string `gorm:"size:255"`
	Company      string `gorm:"size:255"`
	Contact      string `gorm:"size:255"`
	URL          string `gorm:"size:512"`
	// Instances overrides settings.ProjectInstancesDefault when non-nil.
	Instances *int
}

// PIDName is the "A: Name" display label the original renders everywhere a
// project is referenced in a list.
func (p *Project) PIDName() string { return p.PID + ": " + p.Name }

// Student is a roster entry.
type Student struct {
	ID            uint         `gorm:"primaryKey"`
	SNumber       string       `gorm:"size:8;uniqueIndex;not null"`
	FirstName     string       `gorm:"size:255;not null"`
	LastName      string       `gorm:"size:255;not null"`
	StudyProgram  StudyProgram `gorm:"size:3;not null"`
	IsActive      bool         `gorm:"not null;default:true"`
}

// FullName is "First Last".
func (s *Student) FullName() string { return s.FirstName + " " + s.LastName }

// Email derives the institutional address from the matriculation number.
func (s *Student) Email() string { return s.SNumber + "@htw-dresden.de" }

// IsSideAttribute is the "wing" flag: true iff the student's study program
// is the side-attribute tag, driving H3.
func (s *Student) IsSideAttribute() bool { return s.StudyProgram == SideAttributeProgram }

// IsOut is the display-layer negation of IsActive.
func (s *Student) IsOut() bool { return !s.IsActive }

// Poll levels and scores, mirroring the closed enumerations the original
// validates ProjectAnswer.Score and LevelAnswer.Level against.
const (
	ScoreMin     = 1
	ScoreMax     = 5
	ScoreDefault = 3

	LevelUnspecified = 1
	LevelAmbitious   = 2
	LevelSolid       = 3
	LevelMinimalPass = 4
	LevelDefault     = LevelUnspecified
)

// ScoreChoice is one entry of the fixed score-icon legend used by the
// happiness display.
type ScoreChoice struct {
	Value int
	Name  string
	Icon  string
	Color string
}

// ScoreChoices is the fixed 1..5 legend.
var ScoreChoices = []ScoreChoice{
	{1, "very bad", "emoji-angry", "red"},
	{2, "bad", "emoji-frown", "orange"},
	{3, "neutral", "emoji-neutral", "#FFD801"},
	{4, "good", "emoji-smile", "#9ACD32"},
	{5, "very good", "emoji-heart-eyes", "green"},
}

// Poll is one-to-one with Student.
type Poll struct {
	ID          uint `gorm:"primaryKey"`
	StudentID   uint `gorm:"uniqueIndex;not null"`
	Student     Student
	IsGenerated bool `gorm:"not null;default:false"`
}

// ProjectAnswer is a student's numeric preference for one project.
type ProjectAnswer struct {
	ID        uint `gorm:"primaryKey"`
	PollID    uint `gorm:"uniqueIndex:idx_poll_project;not null"`
	ProjectID uint `gorm:"uniqueIndex:idx_poll_project;not null"`
	Score     int  `gorm:"not null;default:3"`
}

// LevelAnswer is a student's optional ambition level, unique per poll.
type LevelAnswer struct {
	ID     uint `gorm:"primaryKey"`
	PollID uint `gorm:"uniqueIndex;not null"`
	Level  int  `gorm:"not null;default:1"`
}

// ProjectInstance is one concrete team-slot under a Project, created fresh
// by the Instance Expander on every regeneration.
type ProjectInstance struct {
	ID        uint `gorm:"primaryKey"`
	ProjectID uint `gorm:"uniqueIndex:idx_project_number;not null"`
	Project   Project
	Number    int `gorm:"uniqueIndex:idx_project_number;not null"`
}

// Label is the "<pid><number>" identifier used in the CLI and the PDF
// layout (e.g. "A1").
func (pi *ProjectInstance) Label() string {
	if pi.Project.PID == "" {
		return ""
	}
	return pi.Project.PID + strconv.Itoa(pi.Number)
}

// Team is one assignment row: a student placed into a project instance by
// the Solution Extractor.
type Team struct {
	ID                uint `gorm:"primaryKey"`
	ProjectID         uint `gorm:"not null"`
	Project           Project
	ProjectInstanceID uint `gorm:"not null"`
	ProjectInstance   ProjectInstance
	StudentID         uint `gorm:"uniqueIndex;not null"`
	Student           Student
	IsInitialContact  bool    `gorm:"not null;default:false"`
	Score             float64 // student's raw poll score for this instance's project
}

// AssignmentVariant is the sum type the Model Builder dispatches on once at
// model construction.
type AssignmentVariant int

const (
	VariantPreference AssignmentVariant = 1
	VariantLevelGroup AssignmentVariant = 2
	VariantCombined   AssignmentVariant = 3
)

// Settings is the process-wide configuration singleton.
type Settings struct {
	ID                      uint `gorm:"primaryKey"`
	ProjectsIsVisible       bool
	PollIsVisible           bool
	PollIsWritable          bool
	TeamsIsVisible          bool
	TeamMinMember           int `gorm:"not null;default:6"`
	ProjectInstancesDefault int `gorm:"not null;default:4"`
	SideAttributeHidden     bool
	WingsAreOut             bool

	AssignmentVariant    AssignmentVariant `gorm:"not null;default:1"`
	UseRandomPollDefaults bool
	MaxRuntimeSeconds    int     `gorm:"not null;default:300"`
	RelativeGapLimit     float64 `gorm:"not null;default:0"`
	NumWorkers           int     `gorm:"not null;default:0"` // 0 = all cores
	ShowDebugInfo        bool
	// LevelGroupFactor is the per-indicator weight variant 2/3 apply to the
	// ambition-level homogeneity reward. Originally a hardcoded constant,
	// surfaced here as a tunable per Open Question 3.
	LevelGroupFactor int `gorm:"not null;default:25"`
}

// DefaultSettings mirrors the zero-value defaults the original model
// declares on its fields.
func DefaultSettings() Settings {
	return Settings{
		TeamMinMember:           6,
		ProjectInstancesDefault: 4,
		AssignmentVariant:       VariantPreference,
		MaxRuntimeSeconds:       300,
		LevelGroupFactor:        25,
	}
}

// Info is the singleton carrying solve/poll bookkeeping.
type Info struct {
	ID               uint `gorm:"primaryKey"`
	TeamsLastUpdate  *time.Time
	PollsLastUpdate  *time.Time
	ResultInfo       string `gorm:"size:4096"`
}
