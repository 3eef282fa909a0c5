package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type ListNotificationFilter struct {
	Category   NotificationCategory
	UnreadOnly bool
}

type ListNotificationRequest struct {
	PageToken  string
	PageSize   int32
	Category   string
	UnreadOnly bool
}

type ListNotificationResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
}

type CreateNotificationRequest struct {
	Type        string
	Category    string
	Title       string
	Message     string
	IsImportant bool
	ActionURL   string
	ActionText  string
	RefID       *snowflake.ID
}

type Service interface {
	Create(context.Context, CreateNotificationRequest) (Notification, error)
	List(context.Context, ListNotificationRequest) (ListNotificationResponse, error)
	GetByID(ctx context.Context, id string) (Notification, error)
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidType          = errors.New("invalid_notification_type")
	ErrInvalidCategory      = errors.New("invalid_notification_category")
	ErrTitleRequired        = errors.New("title_required")
	ErrMessageRequired      = errors.New("message_required")
	ErrNotificationNotFound = errors.New("notification_not_found")
)
