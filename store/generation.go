package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/opencampus/teamforge/domain"
)

// RunGenerationCycle runs the atomic sequence clean-teams, clean-instances,
// expand-instances, solve, persist, update-info, all inside one
// transaction. buildInstances receives the fresh project catalog and
// settings and returns the new ProjectInstances, persisted immediately so
// their IDs are stable for the Index Remapper; solve then receives those
// persisted instances plus the active roster and returns the Teams to
// bulk-insert before Info.teams_last_update is stamped and the
// transaction commits.
func (s *Store) RunGenerationCycle(
	buildInstances func(projects []domain.Project, settings domain.Settings) ([]domain.ProjectInstance, error),
	solve func(instances []domain.ProjectInstance, students []domain.Student, settings domain.Settings) ([]domain.Team, error),
) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{}).Delete(&domain.Team{}, "1 = 1").Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{}).Delete(&domain.ProjectInstance{}, "1 = 1").Error; err != nil {
			return err
		}

		var settings domain.Settings
		if err := tx.FirstOrCreate(&settings, domain.Settings{ID: 1}).Error; err != nil {
			return err
		}
		var projects []domain.Project
		if err := tx.Order("pid").Find(&projects).Error; err != nil {
			return err
		}
		var students []domain.Student
		if err := tx.Where("is_active = ?", true).Find(&students).Error; err != nil {
			return err
		}

		instances, err := buildInstances(projects, settings)
		if err != nil {
			return err
		}
		if len(instances) > 0 {
			if err := tx.Create(&instances).Error; err != nil {
				return err
			}
		}

		teams, err := solve(instances, students, settings)
		if err != nil {
			return err
		}
		if len(teams) > 0 {
			if err := tx.Create(&teams).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		var info domain.Info
		if err := tx.FirstOrCreate(&info, domain.Info{ID: 1}).Error; err != nil {
			return err
		}
		info.TeamsLastUpdate = &now
		info.ID = 1
		return tx.Save(&info).Error
	})
}
