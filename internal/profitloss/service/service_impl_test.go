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
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	productdomain "github.com/seatwise/seatwise/internal/product/domain"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	saledomain "github.com/seatwise/seatwise/internal/sale/domain"
	subscriptiondomain "github.com/seatwise/seatwise/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestBuildReport_SameMonthInvoicesShareBucket(t *testing.T) {
	occurred := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	legacy := []contributionRow{
		{RefID: 1, OccurredAt: occurred, Amount: 30, ProductName: "Stream Plus"},
		{RefID: 2, OccurredAt: occurred.AddDate(0, 0, 5), Amount: 45, ProductName: "Stream Plus"},
	}

	report := buildReport(nil, legacy, nil, occurred)

	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "July 2026", report.Monthly[0].Month)
	assert.Equal(t, 75.0, report.Monthly[0].Revenue)
	assert.Equal(t, 2, report.Monthly[0].Count)
}

func TestBuildReport_MultiItemInvoiceCountsOnce(t *testing.T) {
	occurred := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)
	items := []contributionRow{
		{RefID: 7, OccurredAt: occurred, Amount: 30, ProductName: "Stream Plus"},
		{RefID: 7, OccurredAt: occurred, Amount: 45, ProductName: "Design Suite"},
	}

	report := buildReport(items, nil, nil, occurred)

	require.Len(t, report.Monthly, 1)
	assert.Equal(t, 75.0, report.Monthly[0].Revenue)
	assert.Equal(t, 1, report.Monthly[0].Count)
}

func TestBuildReport_CostBasisAndMargin(t *testing.T) {
	occurred := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	sales := []contributionRow{
		// Cost basis 100/5 = 20 per seat.
		{RefID: 1, OccurredAt: occurred, Amount: 35, ProductName: "Family Account", PurchasePrice: 100, MaxUsers: 5},
		// Unknown capacity: cost side skipped, revenue still counted.
		{RefID: 2, OccurredAt: occurred, Amount: 10, ProductName: "Loose Seat", PurchasePrice: 100, MaxUsers: 0},
	}

	report := buildReport(nil, nil, sales, occurred)

	assert.Equal(t, 45.0, report.TotalRevenue)
	assert.Equal(t, 20.0, report.TotalCost)
	assert.Equal(t, 25.0, report.NetProfit)
	assert.InDelta(t, 25.0/45.0*100, report.ProfitMargin, 1e-9)
}

func TestBuildReport_Empty(t *testing.T) {
	report := buildReport(nil, nil, nil, time.Now())

	assert.Equal(t, 0.0, report.TotalRevenue)
	assert.Equal(t, 0.0, report.ProfitMargin)
	assert.Empty(t, report.Monthly)
	assert.Empty(t, report.Products)
}

func TestBuildReport_ProductsSortedByProfit(t *testing.T) {
	occurred := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	var rows []contributionRow
	for i := 0; i < 12; i++ {
		rows = append(rows, contributionRow{
			RefID:       int64(i),
			OccurredAt:  occurred,
			Amount:      float64(10 + i),
			ProductName: fmt.Sprintf("Product %02d", i),
		})
	}

	report := buildReport(nil, rows, nil, occurred)

	require.Len(t, report.Products, 10)
	assert.Equal(t, "Product 11", report.Products[0].Name)
	assert.Equal(t, 21.0, report.Products[0].Profit)
	// Entries stay sorted best first.
	for i := 1; i < len(report.Products); i++ {
		assert.GreaterOrEqual(t, report.Products[i-1].Profit, report.Products[i].Profit)
	}
}

func TestReport_EndToEnd(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&productdomain.PricingTier{},
		&purchasedomain.Purchase{},
		&saledomain.Sale{},
		&subscriptiondomain.Subscription{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	invalidation := cache.NewInvalidation()
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(now),
		Invalidation: invalidation,
	})

	cust := customerdomain.Customer{ID: node.Generate(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, db.Create(&cust).Error)

	prod := productdomain.Product{ID: node.Generate(), Name: "Stream Plus", Slug: "stream-plus", Description: "d", Price: 100}
	require.NoError(t, db.Create(&prod).Error)
	tier := productdomain.PricingTier{ID: node.Generate(), ProductID: prod.ID, Name: "6 months", DurationMonths: 6, Price: 30}
	require.NoError(t, db.Create(&tier).Error)

	purchase := purchasedomain.Purchase{
		ID:             node.Generate(),
		ServiceName:    "Stream Plus Family",
		AccountDetails: "creds",
		PurchasePrice:  100,
		MaxUsers:       5,
		PurchaseDate:   now,
		Status:         purchasedomain.PurchaseStatusActive,
	}
	require.NoError(t, db.Create(&purchase).Error)

	purchaseID := purchase.ID
	sub := subscriptiondomain.Subscription{
		ID:            node.Generate(),
		CustomerID:    cust.ID,
		PricingTierID: tier.ID,
		PurchaseID:    &purchaseID,
		StartDate:     now.AddDate(0, -1, 0),
		EndDate:       now.AddDate(0, 5, 0),
		Status:        subscriptiondomain.SubscriptionStatusActive,
	}
	require.NoError(t, db.Create(&sub).Error)

	// Paid legacy invoice: revenue 35, cost 100/5 = 20.
	paidAt := now.AddDate(0, 0, -10)
	subID := sub.ID
	paid := invoicedomain.Invoice{
		ID:             node.Generate(),
		CustomerID:     cust.ID,
		SubscriptionID: &subID,
		TotalAmount:    35,
		Status:         invoicedomain.InvoiceStatusPaid,
		IssueDate:      paidAt,
		DueDate:        paidAt.AddDate(0, 0, 14),
		PaidDate:       &paidAt,
	}
	require.NoError(t, db.Create(&paid).Error)

	// Pending invoices contribute nothing.
	pending := invoicedomain.Invoice{
		ID:          node.Generate(),
		CustomerID:  cust.ID,
		TotalAmount: 99,
		Status:      invoicedomain.InvoiceStatusPending,
		IssueDate:   now,
		DueDate:     now.AddDate(0, 0, 14),
	}
	require.NoError(t, db.Create(&pending).Error)

	// Active sale: revenue 35, cost 20.
	sale := saledomain.Sale{
		ID:         node.Generate(),
		PurchaseID: purchase.ID,
		CustomerID: cust.ID,
		SalePrice:  35,
		SaleDate:   now.AddDate(0, 0, -5),
		Status:     saledomain.SaleStatusActive,
	}
	require.NoError(t, db.Create(&sale).Error)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 70.0, report.TotalRevenue)
	assert.Equal(t, 40.0, report.TotalCost)
	assert.Equal(t, 30.0, report.NetProfit)
	assert.Equal(t, report.TotalRevenue-report.TotalCost, report.NetProfit)

	// Cached until a writer bumps the generation.
	another := saledomain.Sale{
		ID:         node.Generate(),
		PurchaseID: purchase.ID,
		CustomerID: cust.ID,
		SalePrice:  15,
		SaleDate:   now,
		Status:     saledomain.SaleStatusActive,
	}
	require.NoError(t, db.Create(&another).Error)

	cached, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 70.0, cached.TotalRevenue)

	invalidation.Bump()
	fresh, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85.0, fresh.TotalRevenue)
}
