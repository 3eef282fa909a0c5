// Package domain defines the profit and loss report surface.
package domain

import (
	"context"
	"time"
)

// MonthlyEntry aggregates revenue and cost for one calendar month.
type MonthlyEntry struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	// Count is the number of paid invoices and active sales that landed in
	// this month.
	Count int `json:"count"`
}

// ProductEntry aggregates revenue and cost attributed to one product or
// resold service.
type ProductEntry struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	Count   int     `json:"count"`
}

type Report struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	NetProfit    float64 `json:"net_profit"`
	// ProfitMargin is NetProfit over TotalRevenue as a percentage, zero when
	// there is no revenue.
	ProfitMargin float64        `json:"profit_margin"`
	Monthly      []MonthlyEntry `json:"monthly"`
	// Products holds the ten most profitable products, best first.
	Products    []ProductEntry `json:"products"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type Service interface {
	// Report scans all paid invoices and active sales and reduces them into
	// revenue, cost, and profit aggregates.
	Report(ctx context.Context) (Report, error)
}
