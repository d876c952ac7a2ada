package models

import "time"

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Announcement is built per page load and never persisted.
type Announcement struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Source   string    `json:"source"`
	RecordID string    `json:"recordId"`
	Status   Status    `json:"status"`
	Priority Priority  `json:"priority"`
	At       time.Time `json:"at"`
	Link     string    `json:"link"`
}
