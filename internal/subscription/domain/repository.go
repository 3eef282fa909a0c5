package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	Update(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListSubscriptionFilter, page pagination.Pagination) ([]*Subscription, error)
	// ListActiveEndingBetween returns active subscriptions whose end date
	// falls in [from, to], ordered by end date ascending.
	ListActiveEndingBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Subscription, error)
	// ListActiveEndedBefore returns active subscriptions already past their
	// end date, capped at limit.
	ListActiveEndedBefore(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]Subscription, error)
}
