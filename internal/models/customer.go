package models

import (
	"encoding/json"
	"fmt"
	"time"

	"crm-backend/internal/database"
)

var CustomersTable = database.TableSpec{Name: "customers"}

// NotAvailable is stored for optional customer fields left empty at creation.
const NotAvailable = "N/A"

// Task is a to-do item embedded in a customer. Tasks have no identity of
// their own; the list is always replaced as a whole.
type Task struct {
	Title     string     `bson:"title" json:"title"`
	DueDate   *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Completed bool       `bson:"completed" json:"completed"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
}

// dueDateLayouts are tried in order when decoding a task's due date.
var dueDateLayouts = []string{time.RFC3339Nano, time.DateOnly}

// UnmarshalJSON accepts a due date as RFC 3339, a bare YYYY-MM-DD date, or
// an empty string, which clears it.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		DueDate *string `json:"dueDate"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.DueDate = nil
	if aux.DueDate == nil || *aux.DueDate == "" {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if due, err := time.Parse(layout, *aux.DueDate); err == nil {
			due = due.UTC()
			t.DueDate = &due
			return nil
		}
	}
	return fmt.Errorf("invalid dueDate %q", *aux.DueDate)
}

// Information groups free-form details about a customer.
type Information struct {
	Notes string `bson:"notes" json:"notes"`
}

type Customer struct {
	CustomerID     string      `bson:"_id" json:"customerId"`
	Name           string      `bson:"name" json:"name"`
	Address        string      `bson:"address" json:"address"`
	CompanyName    string      `bson:"companyName" json:"companyName"`
	Email          string      `bson:"email" json:"email"`
	Phone          string      `bson:"phone" json:"phone"`
	ProfilePicture *string     `bson:"profilePicture" json:"profilePicture"`
	CreatedAt      time.Time   `bson:"createdAt" json:"createdAt"`
	Information    Information `bson:"information" json:"information"`
	Tasks          []Task      `bson:"tasks" json:"tasks"`
	AssignedUsers  IDList      `bson:"assignedUsers" json:"assignedUsers"`
}

// Normalize replaces missing lists with empty ones so clients always see arrays.
func (c *Customer) Normalize() {
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	if c.AssignedUsers == nil {
		c.AssignedUsers = IDList{}
	}
}
