package view

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gaming-ops-portal/internal/models"
)

type Field struct {
	Key   string
	Label string
	Value string
}

type FieldGroup struct {
	Name   string
	Fields []Field
}

// Display order of the report viewer's groups.
var groupOrder = []string{"Schedule", "Location", "People", "Details", "Status", "Other"}

// Keywords are checked in this order; the first hit wins. Status comes
// first so reviewedAt lands there and not under Schedule.
var categoryKeywords = []struct {
	group    string
	keywords []string
}{
	{"Status", []string{"status", "review", "approv", "remark"}},
	{"Schedule", []string{"date", "time", "filed", "created", "updated"}},
	{"Location", []string{"location", "destination", "venue", "site", "area", "address"}},
	{"People", []string{"name", "driver", "reliever", "operator", "passenger", "employee", "submitter", "uniquekey", "requested", "contact", "department", "position"}},
	{"Details", []string{"description", "purpose", "reason", "type", "category", "code", "number", "count"}},
}

func categoryOf(key string) string {
	k := strings.ToLower(key)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(k, kw) {
				return c.group
			}
		}
	}
	return "Other"
}

// CategorizeFields groups record fields by keyword for the report viewer.
// Empty values and empty groups are dropped.
func CategorizeFields(fields map[string]string) []FieldGroup {
	byGroup := map[string][]Field{}
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			continue
		}
		g := categoryOf(k)
		byGroup[g] = append(byGroup[g], Field{Key: k, Label: Humanize(k), Value: v})
	}
	var out []FieldGroup
	for _, name := range groupOrder {
		fs := byGroup[name]
		if len(fs) == 0 {
			continue
		}
		sort.Slice(fs, func(i, j int) bool { return fs[i].Key < fs[j].Key })
		out = append(out, FieldGroup{Name: name, Fields: fs})
	}
	return out
}

// Humanize turns a camelCase key into a label: "serviceDate" -> "Service Date".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FlattenRecord turns a stored document into display strings keyed by its
// JSON field names. The id is left out; lists are comma-joined.
func FlattenRecord(record any) (map[string]string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k == "id" {
			continue
		}
		switch val := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[k] = strings.Join(parts, ", ")
		case float64:
			out[k] = fmt.Sprintf("%g", val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// ReportView is the render context of the record viewer modal.
type ReportView struct {
	Title      string
	RecordID   string
	Groups     []FieldGroup
	Photos     []models.MediaPointer
	PhotoError string
	Back       string
}

const ReportViewerID = "report-viewer"

func (r *Renderer) ReportModal(v ReportView) (Modal, error) {
	markup, err := r.Fragment("report_modal", v)
	if err != nil {
		return Modal{}, err
	}
	return Modal{RootID: ReportViewerID, HTML: markup}, nil
}
