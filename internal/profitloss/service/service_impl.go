package service

import (
	"context"
	"sort"
	"time"

	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	"github.com/seatwise/seatwise/internal/profitloss/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reportTTL   = 5 * time.Minute
	topProducts = 10
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Invalidation *cache.Invalidation
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	invalidation *cache.Invalidation
	reports      cache.Cache[uint64, domain.Report]
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("profitloss.service"),
		clock:        p.Clock,
		invalidation: p.Invalidation,
		reports:      cache.NewTTLCache[uint64, domain.Report](),
	}
}

// contributionRow is one revenue line with its optional cost basis. A zero
// MaxUsers means the cost side is unknown and is skipped.
type contributionRow struct {
	RefID         int64     `gorm:"column:ref_id"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
	Amount        float64   `gorm:"column:amount"`
	ProductName   string    `gorm:"column:product_name"`
	PurchasePrice float64   `gorm:"column:purchase_price"`
	MaxUsers      int       `gorm:"column:max_users"`
}

func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	gen := s.invalidation.Gen()
	if report, ok := s.reports.Get(gen); ok {
		return report, nil
	}

	itemRows, err := s.listInvoiceItemContributions(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	legacyRows, err := s.listLegacyInvoiceContributions(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	saleRows, err := s.listSaleContributions(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	report := buildReport(itemRows, legacyRows, saleRows, s.clock.Now())
	s.reports.Set(gen, report, reportTTL)

	s.log.Debug("profit loss report computed",
		zap.Int("invoice_item_rows", len(itemRows)),
		zap.Int("legacy_invoice_rows", len(legacyRows)),
		zap.Int("sale_rows", len(saleRows)),
	)
	return report, nil
}

func (s *Service) listInvoiceItemContributions(ctx context.Context) ([]contributionRow, error) {
	var rows []contributionRow
	err := s.db.WithContext(ctx).Raw(
		`
		SELECT
			i.id AS ref_id,
			COALESCE(i.paid_date, i.issue_date) AS occurred_at,
			ii.amount AS amount,
			COALESCE(p.name, '') AS product_name,
			COALESCE(pu.purchase_price, 0) AS purchase_price,
			COALESCE(pu.max_users, 0) AS max_users
		FROM invoices i
		JOIN invoice_items ii ON ii.invoice_id = i.id
		LEFT JOIN subscriptions s ON s.id = ii.subscription_id
		LEFT JOIN pricing_tiers pt ON pt.id = s.pricing_tier_id
		LEFT JOIN products p ON p.id = pt.product_id
		LEFT JOIN purchases pu ON pu.id = s.purchase_id
		WHERE i.status = ?
		`,
		"paid",
	).Scan(&rows).Error
	return rows, err
}

func (s *Service) listLegacyInvoiceContributions(ctx context.Context) ([]contributionRow, error) {
	var rows []contributionRow
	err := s.db.WithContext(ctx).Raw(
		`
		SELECT
			i.id AS ref_id,
			COALESCE(i.paid_date, i.issue_date) AS occurred_at,
			i.total_amount AS amount,
			COALESCE(p.name, '') AS product_name,
			COALESCE(pu.purchase_price, 0) AS purchase_price,
			COALESCE(pu.max_users, 0) AS max_users
		FROM invoices i
		LEFT JOIN subscriptions s ON s.id = i.subscription_id
		LEFT JOIN pricing_tiers pt ON pt.id = s.pricing_tier_id
		LEFT JOIN products p ON p.id = pt.product_id
		LEFT JOIN purchases pu ON pu.id = s.purchase_id
		WHERE i.status = ?
		  AND NOT EXISTS (
			SELECT 1 FROM invoice_items ii WHERE ii.invoice_id = i.id
		  )
		`,
		"paid",
	).Scan(&rows).Error
	return rows, err
}

func (s *Service) listSaleContributions(ctx context.Context) ([]contributionRow, error) {
	var rows []contributionRow
	err := s.db.WithContext(ctx).Raw(
		`
		SELECT
			sa.id AS ref_id,
			sa.sale_date AS occurred_at,
			sa.sale_price AS amount,
			COALESCE(pu.service_name, '') AS product_name,
			COALESCE(pu.purchase_price, 0) AS purchase_price,
			COALESCE(pu.max_users, 0) AS max_users
		FROM sales sa
		LEFT JOIN purchases pu ON pu.id = sa.purchase_id
		WHERE sa.status = ?
		`,
		"active",
	).Scan(&rows).Error
	return rows, err
}

func (row contributionRow) costBasis() float64 {
	if row.MaxUsers <= 0 || row.PurchasePrice <= 0 {
		return 0
	}
	return row.PurchasePrice / float64(row.MaxUsers)
}

type monthlyBucket struct {
	start time.Time
	entry domain.MonthlyEntry
}

type reportAccumulator struct {
	totalRevenue float64
	totalCost    float64
	monthly      map[string]*monthlyBucket
	products     map[string]*domain.ProductEntry
	countedRefs  map[string]map[int64]bool
}

func newReportAccumulator() *reportAccumulator {
	return &reportAccumulator{
		monthly:     make(map[string]*monthlyBucket),
		products:    make(map[string]*domain.ProductEntry),
		countedRefs: make(map[string]map[int64]bool),
	}
}

// add records one revenue/cost contribution. Rows sharing a refID within the
// same month count as a single transaction: a multi-item invoice is one
// invoice, not one per line.
func (a *reportAccumulator) add(row contributionRow) {
	cost := row.costBasis()
	a.totalRevenue += row.Amount
	a.totalCost += cost

	monthStart := time.Date(row.OccurredAt.Year(), row.OccurredAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	label := monthStart.Format("January 2006")
	bucket, ok := a.monthly[label]
	if !ok {
		bucket = &monthlyBucket{start: monthStart, entry: domain.MonthlyEntry{Month: label}}
		a.monthly[label] = bucket
	}
	bucket.entry.Revenue += row.Amount
	bucket.entry.Cost += cost

	refs, ok := a.countedRefs[label]
	if !ok {
		refs = make(map[int64]bool)
		a.countedRefs[label] = refs
	}
	if !refs[row.RefID] {
		refs[row.RefID] = true
		bucket.entry.Count++
	}

	name := row.ProductName
	if name == "" {
		name = "Unknown"
	}
	product, ok := a.products[name]
	if !ok {
		product = &domain.ProductEntry{Name: name}
		a.products[name] = product
	}
	product.Revenue += row.Amount
	product.Cost += cost
	product.Count++
}

func buildReport(itemRows, legacyRows, saleRows []contributionRow, now time.Time) domain.Report {
	acc := newReportAccumulator()
	for _, row := range itemRows {
		acc.add(row)
	}
	for _, row := range legacyRows {
		acc.add(row)
	}
	for _, row := range saleRows {
		acc.add(row)
	}

	monthly := make([]domain.MonthlyEntry, 0, len(acc.monthly))
	for _, bucket := range acc.monthly {
		bucket.entry.Profit = bucket.entry.Revenue - bucket.entry.Cost
		monthly = append(monthly, bucket.entry)
	}
	sort.Slice(monthly, func(i, j int) bool {
		return acc.monthly[monthly[i].Month].start.Before(acc.monthly[monthly[j].Month].start)
	})

	products := make([]domain.ProductEntry, 0, len(acc.products))
	for _, product := range acc.products {
		product.Profit = product.Revenue - product.Cost
		products = append(products, *product)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Profit != products[j].Profit {
			return products[i].Profit > products[j].Profit
		}
		return products[i].Name < products[j].Name
	})
	if len(products) > topProducts {
		products = products[:topProducts]
	}

	netProfit := acc.totalRevenue - acc.totalCost
	var margin float64
	if acc.totalRevenue > 0 {
		margin = netProfit / acc.totalRevenue * 100
	}

	return domain.Report{
		TotalRevenue: acc.totalRevenue,
		TotalCost:    acc.totalCost,
		NetProfit:    netProfit,
		ProfitMargin: margin,
		Monthly:      monthly,
		Products:     products,
		GeneratedAt:  now,
	}
}
