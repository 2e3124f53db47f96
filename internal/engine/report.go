package engine

import (
	"fmt"
	"strings"
	"time"
)

// State is a step of the per-run state machine:
// START → INSPECTING → DIFFING → PLANNING → EXECUTING → REPORTED, or ABORTED
// when the database cannot be reached.
type State string

const (
	StateStart      State = "START"
	StateInspecting State = "INSPECTING"
	StateDiffing    State = "DIFFING"
	StatePlanning   State = "PLANNING"
	StateExecuting  State = "EXECUTING"
	StateReported   State = "REPORTED"
	StateAborted    State = "ABORTED"
)

type Status string

const (
	StatusAlreadyPresent    Status = "already_present"
	StatusAdded             Status = "added"
	StatusAddFailed         Status = "add_failed"
	StatusTableMissing      Status = "table_missing"
	StatusCatalogUnreadable Status = "catalog_unreadable"
	StatusSkipped           Status = "skipped"
	StatusPlanned           Status = "planned"
)

// Outcome is the result for one table (TableMissing, CatalogUnreadable) or
// one column (everything else).
type Outcome struct {
	Table     string `json:"table"`
	Column    string `json:"column,omitempty"`
	Status    Status `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Statement string `json:"statement,omitempty"`
	Err       error  `json:"-"`
}

type Summary struct {
	Added          int `json:"added"`
	Failed         int `json:"failed"`
	AlreadyPresent int `json:"already_present"`
	TablesMissing  int `json:"tables_missing"`
	Unreadable     int `json:"unreadable"`
	Skipped        int `json:"skipped"`
	Planned        int `json:"planned"`
}

// Report is the outcome of one run, in definition order.
type Report struct {
	RunID      string    `json:"run_id"`
	Dialect    string    `json:"dialect"`
	Catalog    string    `json:"catalog"`
	State      State     `json:"state"`
	DryRun     bool      `json:"dry_run,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
	Summary    Summary   `json:"summary"`
	// Success means the live schema matches the definition after the run.
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (r *Report) summarize() {
	s := Summary{}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusAdded:
			s.Added++
		case StatusAddFailed:
			s.Failed++
		case StatusAlreadyPresent:
			s.AlreadyPresent++
		case StatusTableMissing:
			s.TablesMissing++
		case StatusCatalogUnreadable:
			s.Unreadable++
		case StatusSkipped:
			s.Skipped++
		case StatusPlanned:
			s.Planned++
		}
	}
	r.Summary = s
	r.Success = r.State == StateReported &&
		s.Failed == 0 && s.TablesMissing == 0 && s.Unreadable == 0 && s.Skipped == 0 && s.Planned == 0
}

// Find returns the outcome recorded for table.column.
func (r *Report) Find(table, column string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Table == table && o.Column == column {
			return o, true
		}
	}
	return Outcome{}, false
}

type tone int

const (
	tonePlain tone = iota
	toneGood
	toneWarn
	toneBad
)

type line struct {
	text string
	tone tone
}

// Lines renders the report as console lines.
func (r *Report) Lines() []string {
	entries := r.entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.text
	}
	return out
}

func (r *Report) entries() []line {
	var lines []line
	for _, group := range groupByTable(r.Outcomes) {
		first := group[0]
		switch first.Status {
		case StatusTableMissing:
			lines = append(lines, line{fmt.Sprintf("Table '%s' is missing", first.Table), toneWarn})
			continue
		case StatusCatalogUnreadable:
			lines = append(lines, line{fmt.Sprintf("Error reading table '%s': %s", first.Table, first.Reason), toneBad})
			continue
		}

		var missing []string
		for _, o := range group {
			if o.Status != StatusAlreadyPresent {
				missing = append(missing, o.Column)
			}
		}
		if len(missing) == 0 {
			continue
		}
		lines = append(lines, line{fmt.Sprintf("Table '%s' is missing columns: %s", first.Table, strings.Join(missing, ", ")), toneWarn})

		for _, o := range group {
			switch o.Status {
			case StatusAdded:
				lines = append(lines,
					line{fmt.Sprintf("Adding column '%s'...", o.Column), tonePlain},
					line{fmt.Sprintf("Column '%s' added", o.Column), toneGood})
			case StatusAddFailed:
				lines = append(lines,
					line{fmt.Sprintf("Adding column '%s'...", o.Column), tonePlain},
					line{fmt.Sprintf("Error adding column '%s': %s", o.Column, o.Reason), toneBad})
			case StatusSkipped:
				lines = append(lines, line{fmt.Sprintf("Skipped column '%s': %s", o.Column, o.Reason), toneWarn})
			case StatusPlanned:
				lines = append(lines, line{fmt.Sprintf("Would add column '%s': %s", o.Column, o.Statement), tonePlain})
			}
		}
	}

	summaryTone := toneGood
	if !r.Success {
		summaryTone = toneWarn
	}
	lines = append(lines, line{r.SummaryLine(), summaryTone})
	return lines
}

// SummaryLine is the final line of the console report.
func (r *Report) SummaryLine() string {
	s := r.Summary
	switch {
	case r.State == StateAborted:
		return fmt.Sprintf("Reconciliation aborted: %s", r.Error)
	case r.DryRun:
		return fmt.Sprintf("Dry run finished: %d to add, %d already present, %d tables missing",
			s.Planned, s.AlreadyPresent, s.TablesMissing)
	}
	text := fmt.Sprintf("Reconciliation finished: %d added, %d failed, %d already present, %d tables missing",
		s.Added, s.Failed, s.AlreadyPresent, s.TablesMissing)
	if s.Unreadable > 0 {
		text += fmt.Sprintf(", %d tables unreadable", s.Unreadable)
	}
	if s.Skipped > 0 {
		text += fmt.Sprintf(", %d skipped", s.Skipped)
	}
	return text
}

// groupByTable splits consecutive outcomes by table, keeping order.
func groupByTable(outcomes []Outcome) [][]Outcome {
	var groups [][]Outcome
	for i, o := range outcomes {
		if i == 0 || outcomes[i-1].Table != o.Table {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], o)
	}
	return groups
}
