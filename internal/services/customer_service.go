package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/storage"
)

const customerNotFoundMessage = "Customer not found."

// patchableFields maps the keys accepted by Update to the stored field path.
var patchableFields = map[string]string{
	"name":           "name",
	"address":        "address",
	"companyName":    "companyName",
	"email":          "email",
	"phone":          "phone",
	"profilePicture": "profilePicture",
	"notes":          "information.notes",
}

type CreateCustomerInput struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"required"`
	Phone          string  `json:"phone" validate:"required"`
	Address        string  `json:"address"`
	CompanyName    string  `json:"companyName"`
	ProfilePicture *string `json:"profilePicture"`
}

type CustomerService struct {
	customers database.Table[models.Customer]
	uploader  storage.Uploader
	now       func() time.Time
	newID     func() string
}

func NewCustomerService(customers database.Table[models.Customer], uploader storage.Uploader) *CustomerService {
	return &CustomerService{
		customers: customers,
		uploader:  uploader,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *CustomerService) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		CustomerID:     s.newID(),
		Name:           input.Name,
		Address:        orNotAvailable(input.Address),
		CompanyName:    orNotAvailable(input.CompanyName),
		Email:          input.Email,
		Phone:          input.Phone,
		ProfilePicture: trimmedOrNil(input.ProfilePicture),
		CreatedAt:      s.now().UTC(),
		Information:    models.Information{Notes: ""},
		Tasks:          []models.Task{},
		AssignedUsers:  models.IDList{},
	}

	if err := s.customers.Insert(ctx, customer.CustomerID, customer); err != nil {
		log.Println("[CUSTOMER] [ERROR] create failed:", err)
		return nil, storeError(err, customerNotFoundMessage)
	}

	log.Println("[CUSTOMER] [INFO] customer created:", customer.CustomerID)
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]*models.Customer, error) {
	customers, err := s.customers.Scan(ctx)
	if err != nil {
		log.Println("[CUSTOMER] [ERROR] list failed:", err)
		return nil, storeError(err, customerNotFoundMessage)
	}
	for _, customer := range customers {
		customer.Normalize()
	}
	sortByCreatedAt(customers, func(c *models.Customer) time.Time { return c.CreatedAt })
	return customers, nil
}

// Search returns customers whose name, company or address contains query,
// ignoring case.
func (s *CustomerService) Search(ctx context.Context, query string) ([]*models.Customer, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, validationError("query is required", "query is required")
	}

	customers, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*models.Customer, 0)
	for _, customer := range customers {
		if strings.Contains(strings.ToLower(customer.Name), needle) ||
			strings.Contains(strings.ToLower(customer.CompanyName), needle) ||
			strings.Contains(strings.ToLower(customer.Address), needle) {
			matches = append(matches, customer)
		}
	}
	return matches, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, customerNotFoundMessage)
	}
	customer.Normalize()
	return customer, nil
}

// Update overwrites the allow-listed fields present in fields. Unknown keys
// and non-string values are rejected before anything is written.
func (s *CustomerService) Update(ctx context.Context, id string, fields map[string]any) (*models.Customer, error) {
	if len(fields) == 0 {
		return nil, validationError("No fields to update.")
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	set := make(map[string]any, len(fields))
	var details []string
	for _, key := range keys {
		path, ok := patchableFields[key]
		if !ok {
			details = append(details, fmt.Sprintf("%s is not an updatable field", key))
			continue
		}

		switch value := fields[key].(type) {
		case string:
			set[path] = value
		case nil:
			if key != "profilePicture" {
				details = append(details, fmt.Sprintf("%s must be a string", key))
				continue
			}
			set[path] = nil
		default:
			details = append(details, fmt.Sprintf("%s must be a string", key))
		}
	}
	if len(details) > 0 {
		return nil, validationError(strings.Join(details, ", "), details...)
	}

	customer, err := s.apply(ctx, id, set)
	if err != nil {
		return nil, err
	}
	log.Println("[CUSTOMER] [INFO] customer updated:", id)
	return customer, nil
}

// ReplaceTasks swaps the whole task list. Client order is kept; tasks
// without a creation time are stamped now.
func (s *CustomerService) ReplaceTasks(ctx context.Context, id string, tasks []models.Task) (*models.Customer, error) {
	now := s.now().UTC()
	replaced := make([]models.Task, len(tasks))
	for i, task := range tasks {
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		replaced[i] = task
	}

	return s.apply(ctx, id, map[string]any{"tasks": replaced})
}

// ReplaceNotes writes information.notes and nothing else.
func (s *CustomerService) ReplaceNotes(ctx context.Context, id, notes string) (*models.Customer, error) {
	return s.apply(ctx, id, map[string]any{"information.notes": notes})
}

// ReplaceAssignedUsers swaps the assigned user list. Ids are not checked
// against the users table; blanks and duplicates are dropped.
func (s *CustomerService) ReplaceAssignedUsers(ctx context.Context, id string, userIDs []string) (*models.Customer, error) {
	assigned := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" || slices.Contains(assigned, userID) {
			continue
		}
		assigned = append(assigned, userID)
	}

	return s.apply(ctx, id, map[string]any{"assignedUsers": assigned})
}

func (s *CustomerService) SetProfilePicture(ctx context.Context, id, dataURL string) (string, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return "", err
	}

	url, err := uploadProfilePicture(ctx, s.uploader, storage.EntityCustomers, id, dataURL)
	if err != nil {
		log.Println("[CUSTOMER] [ERROR] profile picture upload failed:", err)
		return "", err
	}

	if err := s.customers.UpdateFields(ctx, id, map[string]any{"profilePicture": url}); err != nil {
		log.Println("[CUSTOMER] [ERROR] profile picture update failed:", err)
		return "", storeError(err, customerNotFoundMessage)
	}

	log.Println("[CUSTOMER] [INFO] profile picture updated:", id)
	return url, nil
}

// Delete removes the customer. Deleting an absent id succeeds.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		log.Println("[CUSTOMER] [ERROR] delete failed:", err)
		return storeError(err, customerNotFoundMessage)
	}
	log.Println("[CUSTOMER] [INFO] customer deleted:", id)
	return nil
}

// apply checks the customer exists, writes fields and returns the stored record.
func (s *CustomerService) apply(ctx context.Context, id string, fields map[string]any) (*models.Customer, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.customers.UpdateFields(ctx, id, fields); err != nil {
		log.Println("[CUSTOMER] [ERROR] update failed:", err)
		return nil, storeError(err, customerNotFoundMessage)
	}

	return s.GetByID(ctx, id)
}

func orNotAvailable(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return models.NotAvailable
}

func sortByCreatedAt[T any](records []*T, createdAt func(*T) time.Time) {
	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).Before(createdAt(records[j]))
	})
}
