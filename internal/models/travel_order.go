package models

import "time"

type TravelOrder struct {
	Document      `bson:",inline"`
	OrderNumber   string    `bson:"orderNumber" firestore:"orderNumber" json:"orderNumber"`
	UserID        string    `bson:"userId" firestore:"userId" json:"userId"`
	EmployeeName  string    `bson:"employeeName" firestore:"employeeName" json:"employeeName"`
	Department    string    `bson:"department" firestore:"department" json:"department"`
	DateFiled     string    `bson:"dateFiled" firestore:"dateFiled" json:"dateFiled"`
	TravelDate    string    `bson:"travelDate" firestore:"travelDate" json:"travelDate"`
	DepartureTime string    `bson:"departureTime" firestore:"departureTime" json:"departureTime"`
	ReturnTime    string    `bson:"returnTime" firestore:"returnTime" json:"returnTime"`
	Destination   string    `bson:"destination" firestore:"destination" json:"destination"`
	DriverName    string    `bson:"driverName" firestore:"driverName" json:"driverName"`
	RelieverName  string    `bson:"relieverName,omitempty" firestore:"relieverName,omitempty" json:"relieverName,omitempty"`
	Passengers    []string  `bson:"passengers" firestore:"passengers" json:"passengers"`
	Purpose       string    `bson:"purpose" firestore:"purpose" json:"purpose"`
	Review        `bson:",inline"`
	CreatedAt     time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"`
}
