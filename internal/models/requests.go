package models

import "time"

type EarlyRestRequest struct {
	Document     `bson:",inline"`
	UserID       string    `bson:"userId" firestore:"userId" json:"userId"`
	EmployeeName string    `bson:"employeeName" firestore:"employeeName" json:"employeeName"`
	Department   string    `bson:"department" firestore:"department" json:"department"`
	Date         string    `bson:"date" firestore:"date" json:"date"`
	RestTime     string    `bson:"restTime" firestore:"restTime" json:"restTime"`
	Reason       string    `bson:"reason" firestore:"reason" json:"reason"`
	Review       `bson:",inline"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}

type ITServiceOrder struct {
	Document     `bson:",inline"`
	UserID       string    `bson:"userId" firestore:"userId" json:"userId"`
	EmployeeName string    `bson:"employeeName" firestore:"employeeName" json:"employeeName"`
	Department   string    `bson:"department" firestore:"department" json:"department"`
	Category     string    `bson:"category" firestore:"category" json:"category"`
	Description  string    `bson:"description" firestore:"description" json:"description"`
	Location     string    `bson:"location" firestore:"location" json:"location"`
	Review       `bson:",inline"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}

type LeaveRequest struct {
	Document     `bson:",inline"`
	UserID       string    `bson:"userId" firestore:"userId" json:"userId"`
	EmployeeName string    `bson:"employeeName" firestore:"employeeName" json:"employeeName"`
	Department   string    `bson:"department" firestore:"department" json:"department"`
	LeaveType    string    `bson:"leaveType" firestore:"leaveType" json:"leaveType"`
	StartDate    string    `bson:"startDate" firestore:"startDate" json:"startDate"`
	EndDate      string    `bson:"endDate" firestore:"endDate" json:"endDate"`
	Reason       string    `bson:"reason" firestore:"reason" json:"reason"`
	Review       `bson:",inline"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}

type Client struct {
	Document      `bson:",inline"`
	Name          string    `bson:"name" firestore:"name" json:"name"`
	ContactPerson string    `bson:"contactPerson" firestore:"contactPerson" json:"contactPerson"`
	Area          string    `bson:"area" firestore:"area" json:"area"`
	Status        string    `bson:"status" firestore:"status" json:"status"`
	CreatedAt     time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}
