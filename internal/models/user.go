package models

import (
	"time"

	"crm-backend/internal/database"
)

// UsersTable keeps one user per email.
var UsersTable = database.TableSpec{Name: "users", Unique: []string{"email"}}

// User represents a CRM account that can sign in and be assigned to customers.
type User struct {
	UserID         string    `bson:"_id" json:"userId"`
	Email          string    `bson:"email" json:"email"`
	PasswordHash   string    `bson:"passwordHash" json:"-"`
	FirstName      string    `bson:"firstName" json:"firstName"`
	LastName       string    `bson:"lastName" json:"lastName"`
	ProfilePicture *string   `bson:"profilePicture" json:"profilePicture"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
