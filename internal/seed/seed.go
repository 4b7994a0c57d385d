// Package seed loads demo users and customers into an empty or existing store.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"crm-backend/internal/auth"
	"crm-backend/internal/database"
	"crm-backend/internal/models"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
)

type sampleCustomer struct {
	name, address, company, email, phone, notes string
	tasks                                       []sampleTask
}

type sampleTask struct {
	title     string
	dueInDays int
	completed bool
}

var sampleCustomers = []sampleCustomer{
	{
		name:    "Samantha Smith",
		address: "104 Nine Iron Court, American Fork, UT 84003",
		company: "Webspark Marketing",
		email:   "samanthasmith@example.com",
		phone:   "385-216-2482",
		notes:   "Wants a full website redesign and branding update. Focus on organic growth.",
		tasks: []sampleTask{
			{"Send website redesign proposal", 3, false},
			{"Schedule branding workshop", 7, true},
			{"Review competitor analysis report", 2, false},
		},
	},
	{
		name:    "Robert Johnson",
		address: "2376 Highland Drive, Salt Lake City, UT 84106",
		company: "Mountain View Construction",
		email:   "robert.johnson@example.com",
		phone:   "801-555-1234",
		notes:   "Needs CRM tracking for materials and labor across 25 concurrent projects.",
		tasks: []sampleTask{
			{"Finalize CRM requirements document", 5, false},
			{"Develop project timeline", 10, false},
			{"Collect payment for initial deposit", -2, true},
		},
	},
	{
		name:    "Maria Garcia",
		address: "88 Canyon Road, Provo, UT 84604",
		company: "Garcia Family Dental",
		email:   "maria.garcia@example.com",
		phone:   "801-555-8890",
		notes:   "Interested in online booking and patient reminders.",
		tasks: []sampleTask{
			{"Share booking integration options", 4, false},
		},
	},
}

// Run clears both tables and writes the demo user plus sample customers
// assigned to that user.
func Run(ctx context.Context, users database.Table[models.User], customers database.Table[models.Customer], now time.Time) error {
	if err := clearUsers(ctx, users); err != nil {
		return err
	}
	if err := clearCustomers(ctx, customers); err != nil {
		return err
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demo := &models.User{
		UserID:       uuid.NewString(),
		Email:        DemoEmail,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "User",
		CreatedAt:    now.UTC(),
	}
	if err := users.Insert(ctx, demo.UserID, demo); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	log.Println("[SEED] [INFO] user created:", demo.Email)

	for i, sample := range sampleCustomers {
		createdAt := now.UTC().Add(time.Duration(i) * time.Second)
		customer := &models.Customer{
			CustomerID:    uuid.NewString(),
			Name:          sample.name,
			Address:       sample.address,
			CompanyName:   sample.company,
			Email:         sample.email,
			Phone:         sample.phone,
			CreatedAt:     createdAt,
			Information:   models.Information{Notes: sample.notes},
			Tasks:         make([]models.Task, 0, len(sample.tasks)),
			AssignedUsers: models.IDList{demo.UserID},
		}
		for _, task := range sample.tasks {
			due := createdAt.AddDate(0, 0, task.dueInDays)
			customer.Tasks = append(customer.Tasks, models.Task{
				Title:     task.title,
				DueDate:   &due,
				Completed: task.completed,
				CreatedAt: createdAt,
			})
		}

		if err := customers.Put(ctx, customer.CustomerID, customer); err != nil {
			return fmt.Errorf("seed customer %s: %w", customer.Name, err)
		}
	}
	log.Printf("[SEED] [INFO] %d customers created", len(sampleCustomers))
	return nil
}

func clearUsers(ctx context.Context, users database.Table[models.User]) error {
	existing, err := users.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan users: %w", err)
	}
	for _, user := range existing {
		if err := users.Delete(ctx, user.UserID); err != nil {
			return fmt.Errorf("delete user %s: %w", user.UserID, err)
		}
	}
	return nil
}

func clearCustomers(ctx context.Context, customers database.Table[models.Customer]) error {
	existing, err := customers.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan customers: %w", err)
	}
	for _, customer := range existing {
		if err := customers.Delete(ctx, customer.CustomerID); err != nil {
			return fmt.Errorf("delete customer %s: %w", customer.CustomerID, err)
		}
	}
	return nil
}
