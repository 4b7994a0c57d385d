package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-backend/internal/models"
)

func createCustomer(t *testing.T, env *testEnv, input CreateCustomerInput) *models.Customer {
	t.Helper()
	customer, err := env.customers.Create(context.Background(), input)
	require.NoError(t, err)
	return customer
}

func TestCreateCustomerDefaults(t *testing.T) {
	env := newTestEnv(t)

	customer := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a@x.com", Phone: "555"})

	assert.NotEmpty(t, customer.CustomerID)
	assert.Equal(t, models.NotAvailable, customer.Address)
	assert.Equal(t, models.NotAvailable, customer.CompanyName)
	assert.Equal(t, "", customer.Information.Notes)
	assert.NotNil(t, customer.Tasks)
	assert.Empty(t, customer.Tasks)
	assert.NotNil(t, customer.AssignedUsers)
	assert.Empty(t, customer.AssignedUsers)
	assert.Nil(t, customer.ProfilePicture)
	assert.Equal(t, testNow, customer.CreatedAt)

	stored, err := env.customers.GetByID(context.Background(), customer.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, customer, stored)
}

func TestCreateCustomerKeepsOptionalFields(t *testing.T) {
	env := newTestEnv(t)

	customer := createCustomer(t, env, CreateCustomerInput{
		Name: "A", Email: "a@x.com", Phone: "555", Address: " 1 Main St ", CompanyName: "Acme",
	})
	assert.Equal(t, "1 Main St", customer.Address)
	assert.Equal(t, "Acme", customer.CompanyName)
}

func TestCreateCustomerValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.customers.Create(context.Background(), CreateCustomerInput{Name: "A", Email: " "})
	requireKind(t, err, KindValidation)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.ElementsMatch(t, []string{"email is required", "phone is required"}, svcErr.Details)

	all, err := env.customers.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a@x.com", Phone: "555"})

	got, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "555", got.Phone)

	require.NoError(t, env.customers.Delete(ctx, created.CustomerID))

	_, err = env.customers.GetByID(ctx, created.CustomerID)
	requireKind(t, err, KindNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a@x.com", Phone: "555"})

	assert.NoError(t, env.customers.Delete(ctx, created.CustomerID))
	assert.NoError(t, env.customers.Delete(ctx, created.CustomerID))
	assert.NoError(t, env.customers.Delete(ctx, "never-existed"))
}

func TestListCustomersOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		at := testNow.Add(time.Duration(3-i) * time.Minute)
		env.customers.now = func() time.Time { return at }
		createCustomer(t, env, CreateCustomerInput{Name: fmt.Sprintf("c%d", i), Email: "e", Phone: "p"})
	}

	all, err := env.customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c2", "c1", "c0"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestSearchCustomers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	createCustomer(t, env, CreateCustomerInput{Name: "Alice Smith", Email: "a", Phone: "1"})
	createCustomer(t, env, CreateCustomerInput{Name: "Bob", Email: "b", Phone: "2", CompanyName: "Smithy Ltd"})
	createCustomer(t, env, CreateCustomerInput{Name: "Cara", Email: "c", Phone: "3", Address: "12 Oak Road"})

	found, err := env.customers.Search(ctx, "SMITH")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = env.customers.Search(ctx, "oak")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cara", found[0].Name)

	found, err = env.customers.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	_, err = env.customers.Search(ctx, "  ")
	requireKind(t, err, KindValidation)
}

func TestUpdateCustomer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a@x.com", Phone: "555"})
	_, err := env.customers.ReplaceNotes(ctx, created.CustomerID, "keep me")
	require.NoError(t, err)

	updated, err := env.customers.Update(ctx, created.CustomerID, map[string]any{
		"name":        "A2",
		"companyName": "Acme",
		"notes":       "new notes",
	})
	require.NoError(t, err)

	assert.Equal(t, "A2", updated.Name)
	assert.Equal(t, "Acme", updated.CompanyName)
	assert.Equal(t, "new notes", updated.Information.Notes)
	assert.Equal(t, "a@x.com", updated.Email)
	assert.Equal(t, models.NotAvailable, updated.Address)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateCustomerClearsProfilePicture(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	picture := "https://example.com/p.png"
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1", ProfilePicture: &picture})
	require.NotNil(t, created.ProfilePicture)

	updated, err := env.customers.Update(ctx, created.CustomerID, map[string]any{"profilePicture": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.ProfilePicture)
}

func TestUpdateCustomerRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1"})

	cases := map[string]map[string]any{
		"empty":         {},
		"unknown key":   {"customerId": "hijack"},
		"mixed":         {"name": "ok", "tasks": []any{}},
		"non string":    {"phone": 555},
		"null name":     {"name": nil},
		"nested object": {"notes": map[string]any{"a": 1}},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.customers.Update(ctx, created.CustomerID, fields)
			requireKind(t, err, KindValidation)
		})
	}

	unchanged, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, created, unchanged)
}

func TestUpdateMissingCustomer(t *testing.T) {
	_, err := newTestEnv(t).customers.Update(context.Background(), "nope", map[string]any{"name": "x"})
	requireKind(t, err, KindNotFound)
}

func TestReplaceNotesLeavesOtherFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1", Address: "Street"})
	_, err := env.customers.ReplaceTasks(ctx, created.CustomerID, []models.Task{{Title: "call"}})
	require.NoError(t, err)
	_, err = env.customers.ReplaceAssignedUsers(ctx, created.CustomerID, []string{"u1"})
	require.NoError(t, err)

	before, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)

	updated, err := env.customers.ReplaceNotes(ctx, created.CustomerID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Information.Notes)

	after, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "hello", after.Information.Notes)

	after.Information.Notes = before.Information.Notes
	assert.Equal(t, before, after)
}

func TestReplaceTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1"})

	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier := testNow.Add(-time.Hour)
	tasks := []models.Task{
		{Title: "second", DueDate: &due, CreatedAt: earlier},
		{Title: "first", Completed: true},
	}

	updated, err := env.customers.ReplaceTasks(ctx, created.CustomerID, tasks)
	require.NoError(t, err)
	require.Len(t, updated.Tasks, 2)
	assert.Equal(t, "second", updated.Tasks[0].Title)
	assert.Equal(t, earlier, updated.Tasks[0].CreatedAt)
	require.NotNil(t, updated.Tasks[0].DueDate)
	assert.True(t, due.Equal(*updated.Tasks[0].DueDate))
	assert.Equal(t, "first", updated.Tasks[1].Title)
	assert.True(t, updated.Tasks[1].Completed)
	assert.Equal(t, testNow, updated.Tasks[1].CreatedAt)
	assert.Nil(t, updated.Tasks[1].DueDate)
}

func TestReplaceTasksEmptyClearsList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1"})

	_, err := env.customers.ReplaceTasks(ctx, created.CustomerID, []models.Task{{Title: "x"}})
	require.NoError(t, err)

	_, err = env.customers.ReplaceTasks(ctx, created.CustomerID, []models.Task{})
	require.NoError(t, err)

	got, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tasks)
	assert.Empty(t, got.Tasks)
	assert.Equal(t, "A", got.Name)
}

func TestReplaceAssignedUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1"})

	updated, err := env.customers.ReplaceAssignedUsers(ctx, created.CustomerID, []string{"u2", " u1 ", "u2", ""})
	require.NoError(t, err)
	assert.Equal(t, models.IDList{"u2", "u1"}, updated.AssignedUsers)

	updated, err = env.customers.ReplaceAssignedUsers(ctx, created.CustomerID, nil)
	require.NoError(t, err)
	assert.NotNil(t, updated.AssignedUsers)
	assert.Empty(t, updated.AssignedUsers)
}

func TestReplaceOnMissingCustomer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.customers.ReplaceTasks(ctx, "nope", nil)
	requireKind(t, err, KindNotFound)
	_, err = env.customers.ReplaceNotes(ctx, "nope", "x")
	requireKind(t, err, KindNotFound)
	_, err = env.customers.ReplaceAssignedUsers(ctx, "nope", nil)
	requireKind(t, err, KindNotFound)

	all, err := env.customers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCustomerSetProfilePicture(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	created := createCustomer(t, env, CreateCustomerInput{Name: "A", Email: "a", Phone: "1"})

	url, err := env.customers.SetProfilePicture(ctx, created.CustomerID, pngDataURL)
	require.NoError(t, err)
	assert.Contains(t, url, "/customers/"+created.CustomerID+"/profile-")

	got, err := env.customers.GetByID(ctx, created.CustomerID)
	require.NoError(t, err)
	require.NotNil(t, got.ProfilePicture)
	assert.Equal(t, url, *got.ProfilePicture)

	_, err = env.customers.SetProfilePicture(ctx, "nope", pngDataURL)
	requireKind(t, err, KindNotFound)
	assert.Len(t, env.uploader.calls, 1)
}
