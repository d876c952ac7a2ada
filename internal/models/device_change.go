package models

import "time"

type DeviceType string

const (
	DeviceTypePOS   DeviceType = "pos"
	DeviceTypePhone DeviceType = "phone"
)

func (t DeviceType) Valid() bool {
	return t == DeviceTypePOS || t == DeviceTypePhone
}

type DeviceIDChange struct {
	Document       `bson:",inline"`
	RequestNumber  string     `bson:"requestNumber" firestore:"requestNumber" json:"requestNumber"`
	UserID         string     `bson:"userId" firestore:"userId" json:"userId"`
	RequestedBy    string     `bson:"requestedBy" firestore:"requestedBy" json:"requestedBy"`
	DeviceType     DeviceType `bson:"deviceType" firestore:"deviceType" json:"deviceType"`
	Operator       string     `bson:"operator" firestore:"operator" json:"operator"`
	OldPOSCode     string     `bson:"oldPosCode,omitempty" firestore:"oldPosCode,omitempty" json:"oldPosCode,omitempty"`
	OldPhoneNumber string     `bson:"oldPhoneNumber,omitempty" firestore:"oldPhoneNumber,omitempty" json:"oldPhoneNumber,omitempty"`
	NewCode        string     `bson:"newCode" firestore:"newCode" json:"newCode"`
	Reason         string     `bson:"reason" firestore:"reason" json:"reason"`
	Review         `bson:",inline"`
	CreatedAt      time.Time  `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
}

// OperatorDeviceSummary is the per-operator aggregate bumped on every
// device-ID change submission. The document id is the operator name.
type OperatorDeviceSummary struct {
	Document      `bson:",inline"`
	Operator      string    `bson:"operator" firestore:"operator" json:"operator"`
	TotalRequests int64     `bson:"totalRequests" firestore:"totalRequests" json:"totalRequests"`
	POSRequests   int64     `bson:"posRequests" firestore:"posRequests" json:"posRequests"`
	PhoneRequests int64     `bson:"phoneRequests" firestore:"phoneRequests" json:"phoneRequests"`
	LastRequestAt time.Time `bson:"lastRequestAt" firestore:"lastRequestAt" json:"lastRequestAt"`
}
