package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crm-backend/internal/auth"
	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/storage"
)

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type fakeUploader struct {
	calls []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, img *storage.Image, entityType, entityID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := storage.ObjectKey(entityType, entityID, img.Ext, testNow)
	f.calls = append(f.calls, key)
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

type testEnv struct {
	users     *UserService
	customers *CustomerService
	uploader  *fakeUploader
	issuer    *auth.Issuer
	userTable database.Table[models.User]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userTable := database.NewBadgerTable[models.User](db, models.UsersTable)
	customerTable := database.NewBadgerTable[models.Customer](db, models.CustomersTable)
	uploader := &fakeUploader{}
	issuer := auth.NewIssuer("test-secret").WithClock(func() time.Time { return testNow })

	seq := 0
	nextID := func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	clock := func() time.Time { return testNow }

	users := NewUserService(userTable, issuer, uploader)
	users.now, users.newID = clock, nextID
	customers := NewCustomerService(customerTable, uploader)
	customers.now, customers.newID = clock, nextID

	return &testEnv{users: users, customers: customers, uploader: uploader, issuer: issuer, userTable: userTable}
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected service error, got %v", err)
	require.Equal(t, kind, svcErr.Kind, svcErr.Error())
}
