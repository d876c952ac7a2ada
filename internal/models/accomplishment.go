package models

import "time"

// AccomplishmentReport is stored without its photos; those go through the relay
// and are looked up again by report id.
type AccomplishmentReport struct {
	Document    `bson:",inline"`
	UniqueKey   string    `bson:"uniquekey" firestore:"uniquekey" json:"uniquekey"`
	Submitter   string    `bson:"submitter" firestore:"submitter" json:"submitter"`
	Department  string    `bson:"department" firestore:"department" json:"department"`
	Position    string    `bson:"position" firestore:"position" json:"position"`
	ServiceDate string    `bson:"serviceDate" firestore:"serviceDate" json:"serviceDate"`
	ServiceTime string    `bson:"serviceTime" firestore:"serviceTime" json:"serviceTime"`
	ServiceType string    `bson:"serviceType" firestore:"serviceType" json:"serviceType"`
	Location    string    `bson:"location" firestore:"location" json:"location"`
	Description string    `bson:"description" firestore:"description" json:"description"`
	PhotoCount  int       `bson:"photoCount" firestore:"photoCount" json:"photoCount"`
	Review      `bson:",inline"`
	CreatedAt   time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
}
