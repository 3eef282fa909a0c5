package domain

import (
	"math"
	"time"
)

// Quote is the price breakdown for a subscription over its duration.
type Quote struct {
	BaseMonthly    float64 `json:"base_monthly"`
	DurationMonths int     `json:"duration_months"`
	Total          float64 `json:"total"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalPrice     float64 `json:"final_price"`
}

// BaseMonthlyPrice picks the first positive value in precedence order:
// the purchase's per-user sale price, the purchase's cost per seat, the
// tier price, the product price.
func BaseMonthlyPrice(salePerUser, costPerSeat, tierPrice, productPrice float64) float64 {
	for _, v := range []float64{salePerUser, costPerSeat, tierPrice, productPrice} {
		if v > 0 {
			return v
		}
	}
	return 0
}

// ComputeQuote prices a duration at the base monthly price with a percentage
// discount. A positive customPrice overrides the computed final price
// entirely; the breakdown still reports the computed total and discount.
func ComputeQuote(baseMonthly float64, durationMonths int, discountPercentage float64, customPrice *float64) Quote {
	total := baseMonthly * float64(durationMonths)
	discount := total * discountPercentage / 100
	final := total - discount
	if customPrice != nil && *customPrice > 0 {
		final = *customPrice
	}
	return Quote{
		BaseMonthly:    baseMonthly,
		DurationMonths: durationMonths,
		Total:          total,
		DiscountAmount: discount,
		FinalPrice:     final,
	}
}

// AddMonths advances a date by calendar months, not fixed 30-day steps.
// Month-end overflow follows Go's AddDate normalization (Jan 31 + 1 month
// lands in early March).
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// DaysLeft counts whole days from today until end, rounding partial days up.
// Today is the day containing now, in UTC.
func DaysLeft(now, end time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC()
	return int(math.Ceil(endDay.Sub(today).Hours() / 24))
}
