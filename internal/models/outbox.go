package models

import "time"

const (
	OutboxPending   = "pending"
	OutboxDelivered = "delivered"
	OutboxFailed    = "failed"
)

// OutboxEntry is a relay delivery that failed after its record was saved.
// File bytes live in the spool directory, not in the document.
type OutboxEntry struct {
	Document    `bson:",inline"`
	RecordID    string            `bson:"recordId" firestore:"recordId" json:"recordId"`
	Collection  string            `bson:"collection" firestore:"collection" json:"collection"`
	Label       string            `bson:"label" firestore:"label" json:"label"`
	Fields      map[string]string `bson:"fields" firestore:"fields" json:"fields"`
	Files       []SpooledFile     `bson:"files" firestore:"files" json:"files"`
	State       string            `bson:"state" firestore:"state" json:"state"`
	Attempts    int               `bson:"attempts" firestore:"attempts" json:"attempts"`
	Progress    RelayProgress     `bson:"progress" firestore:"progress" json:"progress"`
	LastError   string            `bson:"lastError,omitempty" firestore:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt   time.Time         `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
}

type SpooledFile struct {
	Name        string `bson:"name" firestore:"name" json:"name"`
	ContentType string `bson:"contentType" firestore:"contentType" json:"contentType"`
	Path        string `bson:"path" firestore:"path" json:"path"`
	Size        int64  `bson:"size" firestore:"size" json:"size"`
}
