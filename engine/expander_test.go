package engine

import (
	"testing"

	"github.com/opencampus/teamforge/domain"
)

func TestExpandInstancesUsesOverrideOrDefault(t *testing.T) {
	three := 3
	projects := []domain.Project{
		{ID: 1, PID: "A", Instances: &three},
		{ID: 2, PID: "B"},
	}
	settings := domain.Settings{ProjectInstancesDefault: 4}

	instances, err := ExpandInstances(projects, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var aCount, bCount int
	for _, i := range instances {
		switch i.ProjectID {
		case 1:
			aCount++
		case 2:
			bCount++
		}
	}
	if aCount != 3 {
		t.Fatalf("project A: got %d instances, want 3 (override)", aCount)
	}
	if bCount != 4 {
		t.Fatalf("project B: got %d instances, want 4 (default)", bCount)
	}
}

func TestExpandInstancesRejectsOutOfRange(t *testing.T) {
	tooMany := 100
	projects := []domain.Project{{ID: 1, PID: "A", Instances: &tooMany}}
	_, err := ExpandInstances(projects, domain.Settings{ProjectInstancesDefault: 4})
	if err == nil {
		t.Fatal("expected error for instance count out of [1,99]")
	}
	if kind, ok := KindOf(err); !ok || kind != InvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
}

func TestExpandInstancesNumbering(t *testing.T) {
	five := 5
	projects := []domain.Project{{ID: 1, PID: "A", Instances: &five}}
	instances, err := ExpandInstances(projects, domain.Settings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, inst := range instances {
		if inst.Number != i+1 {
			t.Fatalf("instance %d: Number = %d, want %d", i, inst.Number, i+1)
		}
	}
}
