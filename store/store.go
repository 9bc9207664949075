// Package store is the Preference Store adapter: a gorm-backed persistence
// layer exposing the CRUD contract the engine needs (§4.1), plus the
// transactional RunGenerationCycle that wraps one full regeneration as a
// single logical unit.
package store

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opencampus/teamforge/domain"
)

// Store wraps a *gorm.DB with the entity-level operations the engine
// needs. The multi-step mutations (UpsertPollData, DeleteProject,
// DeleteStudents, RunGenerationCycle) each run inside their own
// transaction.
type Store struct {
	db *gorm.DB
}

// Open connects to a sqlite database at path (use ":memory:" for tests),
// running auto-migration for every domain entity.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an already-open *gorm.DB, letting callers inject their own
// dialector (e.g. an in-memory sqlite for tests).
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Migrate auto-migrates every domain table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&domain.Project{},
		&domain.Student{},
		&domain.Poll{},
		&domain.ProjectAnswer{},
		&domain.LevelAnswer{},
		&domain.ProjectInstance{},
		&domain.Team{},
		&domain.Settings{},
		&domain.Info{},
	)
}

// DB exposes the underlying handle for adapters that need raw access
// (migrations, CLI inspection commands).
func (s *Store) DB() *gorm.DB { return s.db }

// --- singletons -------------------------------------------------------

// LoadSettings returns the singleton Settings row, creating it with
// defaults if absent.
func (s *Store) LoadSettings() (domain.Settings, error) {
	var settings domain.Settings
	err := s.db.FirstOrCreate(&settings, domain.Settings{ID: 1}).Error
	if err != nil {
		return domain.Settings{}, err
	}
	if settings.TeamMinMember == 0 {
		settings = domain.DefaultSettings()
		settings.ID = 1
		err = s.db.Save(&settings).Error
	}
	return settings, err
}

// SaveSettings persists the singleton Settings row.
func (s *Store) SaveSettings(settings domain.Settings) error {
	settings.ID = 1
	return s.db.Save(&settings).Error
}

// LoadInfo returns the singleton Info row, creating it if absent.
func (s *Store) LoadInfo() (domain.Info, error) {
	var info domain.Info
	err := s.db.FirstOrCreate(&info, domain.Info{ID: 1}).Error
	return info, err
}

// UpdateInfo applies fn to the singleton Info row and persists it.
func (s *Store) UpdateInfo(fn func(*domain.Info)) error {
	info, err := s.LoadInfo()
	if err != nil {
		return err
	}
	fn(&info)
	info.ID = 1
	return s.db.Save(&info).Error
}

// --- catalog / roster ---------------------------------------------------

// ListProjects returns the full project catalog ordered by PID.
func (s *Store) ListProjects() ([]domain.Project, error) {
	var out []domain.Project
	err := s.db.Order("pid").Find(&out).Error
	return out, err
}

// ListStudents returns the full roster.
func (s *Store) ListStudents() ([]domain.Student, error) {
	var out []domain.Student
	err := s.db.Find(&out).Error
	return out, err
}

// ListActiveStudents returns only students with IsActive=true.
func (s *Store) ListActiveStudents() ([]domain.Student, error) {
	var out []domain.Student
	err := s.db.Where("is_active = ?", true).Find(&out).Error
	return out, err
}

// ListPolls returns every poll.
func (s *Store) ListPolls() ([]domain.Poll, error) {
	var out []domain.Poll
	err := s.db.Find(&out).Error
	return out, err
}

// ListProjectAnswers returns every ProjectAnswer.
func (s *Store) ListProjectAnswers() ([]domain.ProjectAnswer, error) {
	var out []domain.ProjectAnswer
	err := s.db.Find(&out).Error
	return out, err
}

// ListLevelAnswers returns every LevelAnswer.
func (s *Store) ListLevelAnswers() ([]domain.LevelAnswer, error) {
	var out []domain.LevelAnswer
	err := s.db.Find(&out).Error
	return out, err
}

// ListProjectInstances returns every current ProjectInstance.
func (s *Store) ListProjectInstances() ([]domain.ProjectInstance, error) {
	var out []domain.ProjectInstance
	err := s.db.Preload("Project").Order("project_id, number").Find(&out).Error
	return out, err
}

// ListTeams returns every Team row with associations preloaded.
func (s *Store) ListTeams() ([]domain.Team, error) {
	var out []domain.Team
	err := s.db.Preload("Project").Preload("ProjectInstance.Project").Preload("Student").Find(&out).Error
	return out, err
}

// CountTeams reports how many Team rows currently exist. Nothing in the
// module calls it: ExpandInstances does not check for existing teams, and
// RunGenerationCycle deletes all teams before expanding instances.
func (s *Store) CountTeams() (int64, error) {
	var n int64
	err := s.db.Model(&domain.Team{}).Count(&n).Error
	return n, err
}

// CreatePolls bulk-inserts new Poll rows, returning them with IDs
// populated.
func (s *Store) CreatePolls(polls []domain.Poll) ([]domain.Poll, error) {
	if len(polls) == 0 {
		return nil, nil
	}
	if err := s.db.Create(&polls).Error; err != nil {
		return nil, err
	}
	return polls, nil
}

// CreateProjectAnswers bulk-inserts new ProjectAnswer rows.
func (s *Store) CreateProjectAnswers(answers []domain.ProjectAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return s.db.Create(&answers).Error
}

// CreateLevelAnswers bulk-inserts new LevelAnswer rows.
func (s *Store) CreateLevelAnswers(levels []domain.LevelAnswer) error {
	if len(levels) == 0 {
		return nil
	}
	return s.db.Create(&levels).Error
}

// UpsertPollData sets or replaces one student's full poll submission:
// marks (or creates) their Poll as not-generated, replaces every
// ProjectAnswer, and replaces the LevelAnswer, inside one transaction.
func (s *Store) UpsertPollData(studentID uint, scores map[uint]int, level int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var poll domain.Poll
		err := tx.Where("student_id = ?", studentID).First(&poll).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			poll = domain.Poll{StudentID: studentID}
			if err := tx.Create(&poll).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		poll.IsGenerated = false
		if err := tx.Save(&poll).Error; err != nil {
			return err
		}

		if err := tx.Where("poll_id = ?", poll.ID).Delete(&domain.ProjectAnswer{}).Error; err != nil {
			return err
		}
		answers := make([]domain.ProjectAnswer, 0, len(scores))
		for projectID, score := range scores {
			answers = append(answers, domain.ProjectAnswer{PollID: poll.ID, ProjectID: projectID, Score: score})
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("poll_id = ?", poll.ID).Delete(&domain.LevelAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.LevelAnswer{PollID: poll.ID, Level: level}).Error; err != nil {
			return err
		}

		now := time.Now()
		var info domain.Info
		if err := tx.FirstOrCreate(&info, domain.Info{ID: 1}).Error; err != nil {
			return err
		}
		info.PollsLastUpdate = &now
		info.ID = 1
		return tx.Save(&info).Error
	})
}

// DeleteProject removes a project, returning ErrProtected if any Team
// references it. Callers that need to surface this as a user-visible
// constraint violation should wrap the error into *engine.Error{Kind:
// ProtectedEntity} themselves (errors.Is(err, ErrProtected)); this package
// does not depend on engine.
func (s *Store) DeleteProject(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Team{}).Where("project_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrProtected
		}
		return tx.Delete(&domain.Project{}, id).Error
	})
}

// DeleteStudent removes a single student under the same protection rule as
// DeleteProject.
func (s *Store) DeleteStudent(id uint) error {
	return s.DeleteStudents([]uint{id})
}

// DeleteStudents removes every student in ids as one atomic operation: it
// counts Team references across the whole set and deletes the whole set
// inside a single transaction, so a single protected student rolls back
// the entire batch rather than leaving a partial wipe behind.
func (s *Store) DeleteStudents(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Team{}).Where("student_id IN ?", ids).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrProtected
		}
		return tx.Delete(&domain.Student{}, ids).Error
	})
}
