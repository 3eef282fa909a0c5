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
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	invoicerepository "github.com/seatwise/seatwise/internal/invoice/repository"
	productdomain "github.com/seatwise/seatwise/internal/product/domain"
	productrepository "github.com/seatwise/seatwise/internal/product/repository"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	purchaserepository "github.com/seatwise/seatwise/internal/purchase/repository"
	purchaseservice "github.com/seatwise/seatwise/internal/purchase/service"
	"github.com/seatwise/seatwise/internal/subscription/domain"
	"github.com/seatwise/seatwise/internal/subscription/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&productdomain.PricingTier{},
		&purchasedomain.Purchase{},
		&domain.Subscription{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	purchaseSvc := purchaseservice.New(purchaseservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         purchaserepository.Provide(),
		Invalidation: cache.NewInvalidation(),
	})

	svc := New(Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        fake,
		Repo:         repository.Provide(),
		CustomerRepo: customerrepository.Provide(),
		ProductRepo:  productrepository.Provide(),
		PurchaseRepo: purchaserepository.Provide(),
		PurchaseSvc:  purchaseSvc,
		InvoiceRepo:  invoicerepository.Provide(),
		Invalidation: cache.NewInvalidation(),
	})

	return &testEnv{db: db, node: node, clock: fake, svc: svc}
}

func (e *testEnv) seedCustomer(t *testing.T) customerdomain.Customer {
	t.Helper()
	id := e.node.Generate()
	cust := customerdomain.Customer{
		ID:    id,
		Name:  "Ada",
		Email: fmt.Sprintf("ada-%s@example.com", id),
	}
	require.NoError(t, e.db.Create(&cust).Error)
	return cust
}

func (e *testEnv) seedProductWithTier(t *testing.T, tierPrice float64, months int) (productdomain.Product, productdomain.PricingTier) {
	t.Helper()
	prod := productdomain.Product{
		ID:          e.node.Generate(),
		Name:        "Stream Plus",
		Slug:        fmt.Sprintf("stream-plus-%s", e.node.Generate()),
		Description: "streaming bundle",
		Price:       100,
	}
	require.NoError(t, e.db.Create(&prod).Error)

	tier := productdomain.PricingTier{
		ID:             e.node.Generate(),
		ProductID:      prod.ID,
		Name:           fmt.Sprintf("%d months", months),
		DurationMonths: months,
		Price:          tierPrice,
	}
	require.NoError(t, e.db.Create(&tier).Error)
	return prod, tier
}

func (e *testEnv) seedPurchase(t *testing.T, maxUsers int, salePerUser float64) purchasedomain.Purchase {
	t.Helper()
	purchase := purchasedomain.Purchase{
		ID:               e.node.Generate(),
		ServiceName:      "Stream Plus Family",
		AccountDetails:   "login details",
		PurchasePrice:    100,
		SalePricePerUser: salePerUser,
		MaxUsers:         maxUsers,
		PurchaseDate:     e.clock.Now(),
		Status:           purchasedomain.PurchaseStatusActive,
	}
	require.NoError(t, e.db.Create(&purchase).Error)
	return purchase
}

func TestCreateSubscription_TierPricing(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 12)

	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:         cust.ID.String(),
		PricingTierID:      tier.ID.String(),
		DiscountPercentage: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	// 30 * 12 = 360, minus 10% = 324
	assert.Equal(t, 324.0, sub.FinalPrice)
	assert.Equal(t, domain.AddMonths(sub.StartDate, 12), sub.EndDate)
}

func TestCreateSubscription_PurchasePriceWins(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 6)
	purchase := env.seedPurchase(t, 4, 12.5)

	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
		PurchaseID:    purchase.ID.String(),
	})
	require.NoError(t, err)

	// Per-user sale price beats the tier price: 12.5 * 6 months.
	assert.Equal(t, 75.0, sub.FinalPrice)

	var reloaded purchasedomain.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUsers)
}

func TestCreateSubscription_CustomPriceOverride(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 12)

	custom := 50.0
	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
		CustomPrice:   &custom,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, sub.FinalPrice)
}

func TestCreateSubscription_NoSeatsLeft(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 1)
	purchase := env.seedPurchase(t, 1, 10)

	_, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
		PurchaseID:    purchase.ID.String(),
	})
	require.NoError(t, err)

	other := env.seedCustomer(t)
	_, err = env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    other.ID.String(),
		PricingTierID: tier.ID.String(),
		PurchaseID:    purchase.ID.String(),
	})
	assert.ErrorIs(t, err, purchasedomain.ErrNoSeatsLeft)

	// The failed claim must not leave a half-written subscription behind.
	var count int64
	require.NoError(t, env.db.Model(&domain.Subscription{}).Where("customer_id = ?", other.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateSubscription_Validation(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 12)

	_, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:         cust.ID.String(),
		PricingTierID:      tier.ID.String(),
		DiscountPercentage: 130,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    "not-a-number",
		PricingTierID: tier.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    env.node.Generate().String(),
		PricingTierID: tier.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCancelSubscription_ReleasesSeat(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 6)
	purchase := env.seedPurchase(t, 2, 10)

	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
		PurchaseID:    purchase.ID.String(),
	})
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(context.Background(), sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)

	var reloaded purchasedomain.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, 0, reloaded.CurrentUsers)

	_, err = env.svc.Cancel(context.Background(), sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotActive)
}

func TestRenewSubscription(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 6)

	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
	})
	require.NoError(t, err)

	result, err := env.svc.Renew(context.Background(), sub.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.AddMonths(sub.EndDate, 6), result.Subscription.EndDate)
	assert.Equal(t, sub.FinalPrice, result.Amount)

	var inv invoicedomain.Invoice
	require.NoError(t, env.db.First(&inv, "id = ?", result.InvoiceID).Error)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, inv.Status)
	require.NotNil(t, inv.SubscriptionID)
	assert.Equal(t, sub.ID, *inv.SubscriptionID)
	assert.Equal(t, result.Amount, inv.TotalAmount)
}

func TestRenewSubscription_CancelledNotRenewable(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 6)

	sub, err := env.svc.Create(context.Background(), domain.CreateSubscriptionRequest{
		CustomerID:    cust.ID.String(),
		PricingTierID: tier.ID.String(),
	})
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), sub.ID.String())
	require.NoError(t, err)

	_, err = env.svc.Renew(context.Background(), sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotRenewable)
}

func TestListExpiring_Windows(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 1)

	now := env.clock.Now()
	endsToday := domain.Subscription{
		ID:            env.node.Generate(),
		CustomerID:    cust.ID,
		PricingTierID: tier.ID,
		StartDate:     now.AddDate(0, -1, 0),
		EndDate:       now.Truncate(24 * time.Hour),
		Status:        domain.SubscriptionStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	endsTomorrow := endsToday
	endsTomorrow.ID = env.node.Generate()
	endsTomorrow.EndDate = now.Truncate(24 * time.Hour).AddDate(0, 0, 1)
	outsideWindow := endsToday
	outsideWindow.ID = env.node.Generate()
	outsideWindow.EndDate = now.Truncate(24 * time.Hour).AddDate(0, 0, 6)
	require.NoError(t, env.db.Create(&endsToday).Error)
	require.NoError(t, env.db.Create(&endsTomorrow).Error)
	require.NoError(t, env.db.Create(&outsideWindow).Error)

	expiring, err := env.svc.ListExpiring(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, expiring, 2)

	assert.Equal(t, endsToday.ID, expiring[0].Subscription.ID)
	assert.Equal(t, 0, expiring[0].DaysLeft)
	assert.Equal(t, domain.ExpiryWindowToday, expiring[0].Window)

	assert.Equal(t, endsTomorrow.ID, expiring[1].Subscription.ID)
	assert.Equal(t, 1, expiring[1].DaysLeft)
	assert.Equal(t, domain.ExpiryWindowTomorrow, expiring[1].Window)
}

func TestMarkExpired(t *testing.T) {
	env := newTestEnv(t)
	cust := env.seedCustomer(t)
	_, tier := env.seedProductWithTier(t, 30, 1)
	purchase := env.seedPurchase(t, 2, 10)

	now := env.clock.Now()
	purchaseID := purchase.ID
	pastEnd := domain.Subscription{
		ID:            env.node.Generate(),
		CustomerID:    cust.ID,
		PricingTierID: tier.ID,
		PurchaseID:    &purchaseID,
		StartDate:     now.AddDate(0, -2, 0),
		EndDate:       now.AddDate(0, 0, -3),
		Status:        domain.SubscriptionStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, env.db.Create(&pastEnd).Error)
	require.NoError(t, env.db.Model(&purchasedomain.Purchase{}).
		Where("id = ?", purchase.ID).Update("current_users", 1).Error)

	stillActive := domain.Subscription{
		ID:            env.node.Generate(),
		CustomerID:    cust.ID,
		PricingTierID: tier.ID,
		StartDate:     now,
		EndDate:       now.AddDate(0, 1, 0),
		Status:        domain.SubscriptionStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, env.db.Create(&stillActive).Error)

	count, err := env.svc.MarkExpired(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var reloaded domain.Subscription
	require.NoError(t, env.db.First(&reloaded, "id = ?", pastEnd.ID).Error)
	assert.Equal(t, domain.SubscriptionStatusExpired, reloaded.Status)

	var seat purchasedomain.Purchase
	require.NoError(t, env.db.First(&seat, "id = ?", purchase.ID).Error)
	assert.Equal(t, 0, seat.CurrentUsers)

	var untouched domain.Subscription
	require.NoError(t, env.db.First(&untouched, "id = ?", stillActive.ID).Error)
	assert.Equal(t, domain.SubscriptionStatusActive, untouched.Status)
}
