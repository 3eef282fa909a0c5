package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notification *Notification) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notification, error)
	List(ctx context.Context, db *gorm.DB, filter ListNotificationFilter, page pagination.Pagination) ([]*Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID, readAt time.Time) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, db *gorm.DB) (int64, error)
	// ExistsForRefSince reports whether a notification for the given record
	// was already created at or after since.
	ExistsForRefSince(ctx context.Context, db *gorm.DB, refID snowflake.ID, since time.Time) (bool, error)
}
