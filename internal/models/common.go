package models

import "time"

// Collection names shared by every store backend.
const (
	CollectionUsers                 = "users"
	CollectionAccomplishments       = "accomplishments"
	CollectionTravelOrders          = "travel_orders"
	CollectionDeviceIDChanges       = "device_id_changes"
	CollectionOperatorDeviceSummary = "operator_device_summary"
	CollectionEarlyRestRequests     = "early_rest_requests"
	CollectionITServiceOrders       = "it_service_orders"
	CollectionLeaveRequests         = "leave_requests"
	CollectionClients               = "clients"
	CollectionRelayMedia            = "relay_media"
	CollectionRelayOutbox           = "relay_outbox"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the known workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Document carries the store-assigned id. Backends fill it on read.
type Document struct {
	ID string `bson:"_id,omitempty" firestore:"-" json:"id"`
}

func (d *Document) SetID(id string) { d.ID = id }

// Review holds the approver side of a request document.
type Review struct {
	Status     Status     `bson:"status" firestore:"status" json:"status"`
	ReviewedBy string     `bson:"reviewedBy,omitempty" firestore:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `bson:"reviewedAt,omitempty" firestore:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	Remarks    string     `bson:"remarks,omitempty" firestore:"remarks,omitempty" json:"remarks,omitempty"`
}

// MediaPointer points at an attachment held outside the document store.
type MediaPointer struct {
	ID        string    `bson:"id" firestore:"id" json:"id"`
	URL       string    `bson:"url" firestore:"url" json:"url"`
	ThumbURL  string    `bson:"thumbUrl,omitempty" firestore:"thumbUrl,omitempty" json:"thumbUrl,omitempty"`
	ThumbID   string    `bson:"thumbId,omitempty" firestore:"thumbId,omitempty" json:"-"`
	FileName  string    `bson:"fileName" firestore:"fileName" json:"fileName"`
	FileType  string    `bson:"fileType" firestore:"fileType" json:"fileType"`
	Relay     string    `bson:"relay" firestore:"relay" json:"relay"`
	CreatedAt time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}

// RelayProgress is how far a delivery got. A retry resumes after it.
type RelayProgress struct {
	CaptionSent bool           `bson:"captionSent" firestore:"captionSent" json:"captionSent"`
	FilesSent   int            `bson:"filesSent" firestore:"filesSent" json:"filesSent"`
	Items       []MediaPointer `bson:"items" firestore:"items" json:"items"`
}

// RelayMedia is the relay-owned index of attachments for one record.
type RelayMedia struct {
	Document `bson:",inline"`
	RecordID string         `bson:"recordId" firestore:"recordId" json:"recordId"`
	Label    string         `bson:"label" firestore:"label" json:"label"`
	Items    []MediaPointer `bson:"items" firestore:"items" json:"items"`
}
