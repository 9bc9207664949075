package engine

import (
	"fmt"

	"github.com/opencampus/teamforge/domain"
)

// minInstances and maxInstances bound a legal per-project instance count,
// the [1,99] range the original validates project.instances and
// settings.project_instances_default against.
const (
	minInstances = 1
	maxInstances = 99
)

// ExpandInstances is the Instance Expander: it computes, for each project,
// exactly k_p fresh ProjectInstances (k_p = project.Instances if set, else
// settings.ProjectInstancesDefault), numbered 1..k_p. It does not touch the
// store; callers are expected to delete the previous generation's
// instances first, inside the same transaction, per the §4.1 store
// contract.
func ExpandInstances(projects []domain.Project, settings domain.Settings) ([]domain.ProjectInstance, error) {
	var out []domain.ProjectInstance
	for _, p := range projects {
		k := settings.ProjectInstancesDefault
		if p.Instances != nil {
			k = *p.Instances
		}
		if k < minInstances || k > maxInstances {
			return nil, NewError("ExpandInstances", InvalidConfig,
				fmt.Errorf("project %s: instance count %d out of range [%d,%d]", p.PID, k, minInstances, maxInstances))
		}
		for n := 1; n <= k; n++ {
			out = append(out, domain.ProjectInstance{ProjectID: p.ID, Project: p, Number: n})
		}
	}
	return out, nil
}
