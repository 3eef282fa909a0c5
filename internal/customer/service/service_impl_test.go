package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/seatwise/seatwise/internal/customer/domain"
	"github.com/seatwise/seatwise/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateCustomer(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:    "Ada Lovelace",
		Email:   "Ada@Example.com",
		Phone:   "+44 20 7946 0958",
		Address: "12 St James's Square",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	// Emails are stored lowercased.
	assert.Equal(t, "ada@example.com", created.Email)

	fetched, err := svc.GetByID(context.Background(), domain.GetCustomerRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Also Ada",
		Email: "ADA@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreateCustomer_DuplicatePhone(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Ada",
		Email: "ada@example.com",
		Phone: "+15550001111",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Grace",
		Email: "grace@example.com",
		Phone: "+15550001111",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePhone)
}

func TestCreateCustomer_NoPhone(t *testing.T) {
	svc := newTestService(t)

	// Customers without a phone number must not collide on the unique index.
	first, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, first.Phone)

	second, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Grace",
		Email: "grace@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, second.Phone)
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "",
		Email: "ada@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Ada",
		Email: "not-an-email",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestUpdateCustomer_KeepOwnEmail(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	// Re-submitting the customer's own email is not a duplicate.
	updated, err := svc.Update(context.Background(), domain.UpdateCustomerRequest{
		ID:    created.ID.String(),
		Name:  "Ada L.",
		Email: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
}

func TestDeleteCustomer_NotFound(t *testing.T) {
	svc := newTestService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), domain.DeleteCustomerRequest{ID: node.Generate().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
