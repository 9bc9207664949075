// Package pdfexport builds the layout model for the roster PDF export
// adapter: landscape A4, up to 8 team tables per page in a 4x2 grid. It
// stops at a pure data structure rather than rendering actual PDF bytes —
// no PDF-rendering library appears anywhere in this module's dependency
// corpus, and the export itself is an external I/O adapter the core
// engine does not own.
package pdfexport

import "github.com/opencampus/teamforge/engine"

// TablesPerPage and the grid shape are fixed by the layout spec: 4 columns
// by 2 rows.
const (
	GridColumns   = 4
	GridRows      = 2
	TablesPerPage = GridColumns * GridRows
)

// MemberStyle is the set of rendering hints one roster row carries.
type MemberStyle struct {
	Name          string
	Bold          bool   // initial contact
	StrikeThrough bool   // hidden or inactive
	ColorHint     string // "red" for inactive, "gray" for hidden, "" otherwise
}

// TableLayout is one team's table: a header and its styled member rows.
type TableLayout struct {
	Header  string // "<instance_label> — <project_name>"
	Members []MemberStyle
}

// Page is one landscape A4 page: up to TablesPerPage tables placed in
// reading order across the GridColumns x GridRows grid.
type Page struct {
	Tables []TableLayout
}

// Layout is the full roster export: one or more pages.
type Layout struct {
	Pages []Page
}

// BuildRosterLayout assembles the paginated layout from a team view. It
// does not touch I/O; turning this into actual PDF bytes is left to an
// external renderer (no command in this module does it).
func BuildRosterLayout(view engine.TeamsForView) Layout {
	var tables []TableLayout
	for _, t := range view.Teams {
		table := TableLayout{Header: t.InstanceLabel + " — " + t.ProjectName}
		for _, m := range t.Members {
			style := MemberStyle{
				Name:          m.Name,
				Bold:          m.IsInitialContact,
				StrikeThrough: m.IsHidden || m.IsInactive,
			}
			switch {
			case m.IsInactive:
				style.ColorHint = "red"
			case m.IsHidden:
				style.ColorHint = "gray"
			}
			table.Members = append(table.Members, style)
		}
		tables = append(tables, table)
	}

	var pages []Page
	for i := 0; i < len(tables); i += TablesPerPage {
		end := i + TablesPerPage
		if end > len(tables) {
			end = len(tables)
		}
		pages = append(pages, Page{Tables: tables[i:end]})
	}
	return Layout{Pages: pages}
}
