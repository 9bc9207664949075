package domain

import "testing"

func TestStudentDerivedFields(t *testing.T) {
	s := Student{FirstName: "Ada", LastName: "Lovelace", SNumber: "s1234567", StudyProgram: ProgramInformatik, IsActive: true}
	if s.FullName() != "Ada Lovelace" {
		t.Fatalf("FullName() = %q", s.FullName())
	}
	if s.Email() != "s1234567@htw-dresden.de" {
		t.Fatalf("Email() = %q", s.Email())
	}
	if s.IsSideAttribute() {
		t.Fatal("informatik student should not carry the side attribute")
	}
	if s.IsOut() {
		t.Fatal("active student should not be 'out'")
	}
}

func TestStudentSideAttributeFollowsWingProgram(t *testing.T) {
	s := Student{StudyProgram: SideAttributeProgram}
	if !s.IsSideAttribute() {
		t.Fatal("student on the side-attribute program should be flagged")
	}
}

func TestProjectInstanceLabel(t *testing.T) {
	pi := ProjectInstance{Number: 3, Project: Project{PID: "B"}}
	if got := pi.Label(); got != "B3" {
		t.Fatalf("Label() = %q, want %q", got, "B3")
	}
}

func TestProjectInstanceLabelEmptyWithoutProject(t *testing.T) {
	pi := ProjectInstance{Number: 3}
	if got := pi.Label(); got != "" {
		t.Fatalf("Label() = %q, want empty when Project is unset", got)
	}
}

func TestProjectPIDName(t *testing.T) {
	p := Project{PID: "A", Name: "Widget Factory"}
	if got := p.PIDName(); got != "A: Widget Factory" {
		t.Fatalf("PIDName() = %q", got)
	}
}

func TestIsValidStudyProgram(t *testing.T) {
	if !IsValidStudyProgram("041") {
		t.Fatal("041 should be a valid study program")
	}
	if IsValidStudyProgram("999") {
		t.Fatal("999 should not be a valid study program")
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.TeamMinMember != 6 || s.ProjectInstancesDefault != 4 || s.AssignmentVariant != VariantPreference {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}
