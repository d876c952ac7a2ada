// Package dashboard builds the employee, admin and HR list views and keeps
// them live over the websocket hub.
package dashboard

import (
	"sort"
	"strings"

	"gaming-ops-portal/internal/models"
)

type Column struct {
	Label      string
	Filterable bool
}

type Row struct {
	ID     string
	Cells  []string
	Status string
	Link   string
	Hidden bool
}

type StatusCount struct {
	Status string
	Count  int
}

// FilterSet is the dropdown for one filterable column: every distinct value
// seen in the current rows. Selected is the value picked on the page.
type FilterSet struct {
	Column   int      `json:"column"`
	Label    string   `json:"label"`
	Values   []string `json:"values"`
	Selected string   `json:"selected,omitempty"`
}

type Table struct {
	Columns []Column
	Rows    []Row
	Counts  []StatusCount
	Total   int
	Filters []FilterSet
}

var statusOrder = map[string]int{
	string(models.StatusPending):   0,
	string(models.StatusApproved):  1,
	string(models.StatusRejected):  2,
	string(models.StatusCompleted): 3,
	string(models.StatusCancelled): 4,
}

// NewTable recomputes counts and filter options from rows.
func NewTable(columns []Column, rows []Row) Table {
	t := Table{Columns: columns, Rows: rows, Total: len(rows)}

	counts := map[string]int{}
	for _, r := range rows {
		if r.Status != "" {
			counts[r.Status]++
		}
	}
	for s, n := range counts {
		t.Counts = append(t.Counts, StatusCount{Status: s, Count: n})
	}
	sort.Slice(t.Counts, func(i, j int) bool {
		a, okA := statusOrder[t.Counts[i].Status]
		b, okB := statusOrder[t.Counts[j].Status]
		switch {
		case okA && okB:
			return a < b
		case okA != okB:
			return okA
		}
		return t.Counts[i].Status < t.Counts[j].Status
	})

	for i, c := range columns {
		if !c.Filterable {
			continue
		}
		seen := map[string]bool{}
		var values []string
		for _, r := range rows {
			if i >= len(r.Cells) {
				continue
			}
			v := r.Cells[i]
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		sort.Strings(values)
		t.Filters = append(t.Filters, FilterSet{Column: i, Label: c.Label, Values: values})
	}
	return t
}

// Search hides rows with no cell containing term, case-insensitively. The
// rows stay in the table; only visibility changes.
func Search(t Table, term string) Table {
	term = strings.ToLower(strings.TrimSpace(term))
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		r.Hidden = term != "" && !rowContains(r, term)
		rows[i] = r
	}
	t.Rows = rows
	return t
}

// FilterBy hides rows whose cell in column is not value. An empty value
// leaves visibility unchanged.
func FilterBy(t Table, column int, value string) Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		if value != "" && (column >= len(r.Cells) || r.Cells[column] != value) {
			r.Hidden = true
		}
		rows[i] = r
	}
	t.Rows = rows
	return t
}

// Visible returns the rows that are not hidden.
func (t Table) Visible() []Row {
	var out []Row
	for _, r := range t.Rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}

func rowContains(r Row, term string) bool {
	for _, c := range r.Cells {
		if strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}
