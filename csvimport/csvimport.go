// Package csvimport is the external CSV-roster-import adapter (§6): a
// comma-separated file with a header row and columns first_name,
// last_name, email, study_group. Invalid rows are silently skipped rather
// than failing the whole import, matching the original loader's
// best-effort behavior.
package csvimport

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/opencampus/teamforge/domain"
)

var (
	emailPattern = regexp.MustCompile(`^g?s[0-9]{1,9}@`)
	groupPattern = regexp.MustCompile(`^[0-9]{2}-[0-9]{3}-[0-9]{2}$`)
)

// Mode selects how an import interacts with the existing roster.
type Mode int

const (
	// ModeAdd skips rows whose matriculation id already exists.
	ModeAdd Mode = iota
	// ModeNew wipes the existing roster before importing.
	ModeNew
)

// ParseMode maps the CLI's --mode flag value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "add":
		return ModeAdd, true
	case "new":
		return ModeNew, true
	default:
		return 0, false
	}
}

// Row is one successfully parsed and validated roster entry.
type Row struct {
	SNumber      string
	FirstName    string
	LastName     string
	StudyProgram domain.StudyProgram
}

// Parse reads a CSV roster (header row first, then first_name, last_name,
// email, study_group columns) and returns the valid rows. existing is the
// set of matriculation ids already on the roster; when skipExisting is
// true (ModeAdd), rows matching an existing id are dropped.
func Parse(r io.Reader, existing map[string]bool, skipExisting bool) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows instead of failing the whole import

	if _, err := reader.Read(); err != nil { // header line, discarded
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var rows []Row
	seen := map[string]bool{}
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row: silently skipped, like the original
		}
		if len(cols) < 4 {
			continue
		}

		email := strings.TrimSpace(cols[2])
		if !emailPattern.MatchString(email) {
			continue
		}
		sNumber, _, _ := strings.Cut(email, "@")

		firstName := strings.TrimSpace(cols[0])
		if firstName == "" {
			continue
		}
		lastName := strings.TrimSpace(cols[1])
		if lastName == "" {
			continue
		}

		group := strings.TrimSpace(cols[3])
		if !groupPattern.MatchString(group) {
			continue
		}
		parts := strings.Split(group, "-")
		studyProgram := parts[1]
		if !domain.IsValidStudyProgram(studyProgram) {
			continue
		}

		if skipExisting && existing[sNumber] {
			continue
		}
		if seen[sNumber] {
			continue
		}
		seen[sNumber] = true

		rows = append(rows, Row{
			SNumber:      sNumber,
			FirstName:    firstName,
			LastName:     lastName,
			StudyProgram: domain.StudyProgram(studyProgram),
		})
	}
	return rows, nil
}

// ToStudents converts parsed rows into Student records ready to insert.
func ToStudents(rows []Row) []domain.Student {
	out := make([]domain.Student, len(rows))
	for i, r := range rows {
		out[i] = domain.Student{
			SNumber:      r.SNumber,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			StudyProgram: r.StudyProgram,
			IsActive:     true,
		}
	}
	return out
}
