package models

import "time"

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
	RoleHR       = "hr"
)

// User matches the document in the users collection.
type User struct {
	Document   `bson:",inline"`
	Email      string    `bson:"email" firestore:"email" json:"email"`
	Name       string    `bson:"name" firestore:"name" json:"name"`
	Password   string    `bson:"password" firestore:"password" json:"-"`
	Role       string    `bson:"role" firestore:"role" json:"role"`
	Department string    `bson:"department" firestore:"department" json:"department"`
	Position   string    `bson:"position" firestore:"position" json:"position"`
	Status     string    `bson:"status" firestore:"status" json:"status"`
	CreatedAt  time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
}
