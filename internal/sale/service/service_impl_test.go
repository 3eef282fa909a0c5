package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	customerrepository "github.com/seatwise/seatwise/internal/customer/repository"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	purchaserepository "github.com/seatwise/seatwise/internal/purchase/repository"
	purchaseservice "github.com/seatwise/seatwise/internal/purchase/service"
	"github.com/seatwise/seatwise/internal/sale/domain"
	"github.com/seatwise/seatwise/internal/sale/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type saleTestEnv struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newSaleTestEnv(t *testing.T) *saleTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&purchasedomain.Purchase{},
		&domain.Sale{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.August, 30, 11, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	invalidation := cache.NewInvalidation()
	purchaseSvc := purchaseservice.New(purchaseservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         purchaserepository.Provide(),
		Invalidation: invalidation,
	})

	svc := New(Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         repository.Provide(),
		CustomerRepo: customerrepository.Provide(),
		PurchaseSvc:  purchaseSvc,
		Invalidation: invalidation,
	})

	return &saleTestEnv{db: db, node: node, svc: svc}
}

func (e *saleTestEnv) seed(t *testing.T, maxUsers int) (customerdomain.Customer, purchasedomain.Purchase) {
	t.Helper()
	id := e.node.Generate()
	cust := customerdomain.Customer{
		ID:    id,
		Name:  "Ada",
		Email: fmt.Sprintf("ada-%s@example.com", id),
	}
	require.NoError(t, e.db.Create(&cust).Error)

	purchase := purchasedomain.Purchase{
		ID:             e.node.Generate(),
		ServiceName:    "Stream Plus Family",
		AccountDetails: "shared login",
		PurchasePrice:  100,
		MaxUsers:       maxUsers,
		PurchaseDate:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		Status:         purchasedomain.PurchaseStatusActive,
	}
	require.NoError(t, e.db.Create(&purchase).Error)
	return cust, purchase
}

func TestCreateSale_ClaimsSeat(t *testing.T) {
	env := newSaleTestEnv(t)
	cust, purchase := env.seed(t, 2)

	sale, err := env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusActive, sale.Status)

	var reloaded purchasedomain.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUsers)
}

func TestCreateSale_LastSeatFailureRollsBack(t *testing.T) {
	env := newSaleTestEnv(t)
	cust, purchase := env.seed(t, 1)

	_, err := env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
	})
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 2, pin 5678",
	})
	assert.ErrorIs(t, err, purchasedomain.ErrNoSeatsLeft)

	var count int64
	require.NoError(t, env.db.Model(&domain.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateSale_LeavingActiveReleasesSeat(t *testing.T) {
	env := newSaleTestEnv(t)
	cust, purchase := env.seed(t, 2)

	sale, err := env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
	})
	require.NoError(t, err)

	updated, err := env.svc.Update(context.Background(), domain.UpdateSaleRequest{
		ID:            sale.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
		Status:        "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusCancelled, updated.Status)

	var reloaded purchasedomain.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 0, reloaded.CurrentUsers)
}

func TestDeleteSale_ReleasesActiveSeat(t *testing.T) {
	env := newSaleTestEnv(t)
	cust, purchase := env.seed(t, 2)

	sale, err := env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(context.Background(), sale.ID.String()))

	var reloaded purchasedomain.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 0, reloaded.CurrentUsers)
}

func TestCreateSale_Validation(t *testing.T) {
	env := newSaleTestEnv(t)
	cust, purchase := env.seed(t, 2)

	_, err := env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     0,
		AccessDetails: "profile 1, pin 1234",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSalePrice)

	_, err = env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "pin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAccessDetails)

	// "p1né" is five bytes but only four characters; the minimum counts
	// characters.
	_, err = env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    cust.ID.String(),
		SalePrice:     35,
		AccessDetails: "p1né",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAccessDetails)

	_, err = env.svc.Create(context.Background(), domain.CreateSaleRequest{
		PurchaseID:    purchase.ID.String(),
		CustomerID:    env.node.Generate().String(),
		SalePrice:     35,
		AccessDetails: "profile 1, pin 1234",
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
