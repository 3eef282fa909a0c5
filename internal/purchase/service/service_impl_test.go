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
	"github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/internal/purchase/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *snowflake.Node, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Purchase{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        clock.NewFakeClock(time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)),
		Repo:         repository.Provide(),
		Invalidation: cache.NewInvalidation(),
	})
	return db, node, svc
}

func seedPurchase(t *testing.T, db *gorm.DB, node *snowflake.Node, maxUsers, currentUsers int, status domain.PurchaseStatus) domain.Purchase {
	t.Helper()
	purchase := domain.Purchase{
		ID:               node.Generate(),
		ServiceName:      "Design Suite Team",
		AccountDetails:   "shared login",
		PurchasePrice:    100,
		SalePricePerUser: 15,
		MaxUsers:         maxUsers,
		CurrentUsers:     currentUsers,
		PurchaseDate:     time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		Status:           status,
	}
	require.NoError(t, db.Create(&purchase).Error)
	return purchase
}

func TestClaimSeat_Exhaustion(t *testing.T) {
	db, node, svc := newTestService(t)
	purchase := seedPurchase(t, db, node, 2, 0, domain.PurchaseStatusActive)

	ctx := context.Background()

	claimed, err := svc.ClaimSeat(ctx, db, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, claimed.CurrentUsers)
	assert.Equal(t, domain.PurchaseStatusActive, claimed.Status)

	claimed, err = svc.ClaimSeat(ctx, db, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, claimed.CurrentUsers)
	assert.Equal(t, domain.PurchaseStatusFull, claimed.Status)

	_, err = svc.ClaimSeat(ctx, db, purchase.ID)
	assert.ErrorIs(t, err, domain.ErrNoSeatsLeft)
}

func TestClaimSeat_NotSellable(t *testing.T) {
	db, node, svc := newTestService(t)
	purchase := seedPurchase(t, db, node, 3, 0, domain.PurchaseStatusExpired)

	_, err := svc.ClaimSeat(context.Background(), db, purchase.ID)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotSellable)
}

func TestReleaseSeat_ReopensFullPurchase(t *testing.T) {
	db, node, svc := newTestService(t)
	purchase := seedPurchase(t, db, node, 2, 2, domain.PurchaseStatusFull)

	ctx := context.Background()
	require.NoError(t, svc.ReleaseSeat(ctx, db, purchase.ID))

	var reloaded domain.Purchase
	require.NoError(t, db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUsers)
	assert.Equal(t, domain.PurchaseStatusActive, reloaded.Status)

	// Releasing an empty purchase is a no-op, not an error.
	require.NoError(t, svc.ReleaseSeat(ctx, db, purchase.ID))
	require.NoError(t, svc.ReleaseSeat(ctx, db, purchase.ID))
	require.NoError(t, db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 0, reloaded.CurrentUsers)
}

func TestAvailability_SumsActivePurchases(t *testing.T) {
	db, node, svc := newTestService(t)

	productID := node.Generate()
	first := seedPurchase(t, db, node, 4, 1, domain.PurchaseStatusActive)
	second := seedPurchase(t, db, node, 2, 2, domain.PurchaseStatusFull)
	excluded := seedPurchase(t, db, node, 5, 0, domain.PurchaseStatusExpired)
	for _, id := range []snowflake.ID{first.ID, second.ID, excluded.ID} {
		require.NoError(t, db.Model(&domain.Purchase{}).Where("id = ?", id).Update("product_id", productID).Error)
	}

	availability, err := svc.Availability(context.Background(), productID.String())
	require.NoError(t, err)

	assert.Equal(t, 6, availability.TotalSeats)
	assert.Equal(t, 3, availability.ClaimedSeats)
	assert.Equal(t, 3, availability.AvailableSeats)

	// Seat claims invalidate the cached availability.
	_, err = svc.ClaimSeat(context.Background(), db, first.ID)
	require.NoError(t, err)

	availability, err = svc.Availability(context.Background(), productID.String())
	require.NoError(t, err)
	assert.Equal(t, 4, availability.ClaimedSeats)
	assert.Equal(t, 2, availability.AvailableSeats)
}

func TestCreatePurchase_Validation(t *testing.T) {
	_, _, svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreatePurchaseRequest{
		ServiceName:    "",
		AccountDetails: "creds",
		PurchasePrice:  10,
		MaxUsers:       1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidServiceName)

	// Length minimums count characters, not bytes.
	_, err = svc.Create(context.Background(), domain.CreatePurchaseRequest{
		ServiceName:    "é",
		AccountDetails: "creds",
		PurchasePrice:  10,
		MaxUsers:       1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidServiceName)

	_, err = svc.Create(context.Background(), domain.CreatePurchaseRequest{
		ServiceName:    "Design Suite",
		AccountDetails: "clés",
		PurchasePrice:  10,
		MaxUsers:       1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountDetails)

	_, err = svc.Create(context.Background(), domain.CreatePurchaseRequest{
		ServiceName:    "Design Suite",
		AccountDetails: "creds",
		PurchasePrice:  10,
		MaxUsers:       0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxUsers)
}
