package domain

// ExpiryWindow classifies how soon a subscription runs out.
type ExpiryWindow string

const (
	ExpiryWindowToday    ExpiryWindow = "today"
	ExpiryWindowTomorrow ExpiryWindow = "tomorrow"
	ExpiryWindowThisWeek ExpiryWindow = "this_week"
)

// ExpiringSubscription is an active subscription inside the expiry scan
// window, annotated with how many days remain.
type ExpiringSubscription struct {
	Subscription
	DaysLeft int          `json:"days_left"`
	Window   ExpiryWindow `json:"window"`
}

// ClassifyExpiry maps remaining days onto a warning bucket.
func ClassifyExpiry(daysLeft int) ExpiryWindow {
	switch {
	case daysLeft <= 0:
		return ExpiryWindowToday
	case daysLeft == 1:
		return ExpiryWindowTomorrow
	default:
		return ExpiryWindowThisWeek
	}
}
