package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/clock"
	"github.com/seatwise/seatwise/internal/notification/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateNotificationRequest) (domain.Notification, error) {
	notificationType := domain.NotificationType(strings.ToLower(strings.TrimSpace(req.Type)))
	if notificationType == "" {
		notificationType = domain.NotificationTypeInfo
	}
	if !notificationType.Valid() {
		return domain.Notification{}, domain.ErrInvalidType
	}

	category := domain.NotificationCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if category == "" {
		category = domain.CategorySystem
	}
	if !category.Valid() {
		return domain.Notification{}, domain.ErrInvalidCategory
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Notification{}, domain.ErrTitleRequired
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return domain.Notification{}, domain.ErrMessageRequired
	}

	now := s.clock.Now()
	notification := domain.Notification{
		ID:          s.genID.Generate(),
		Type:        notificationType,
		Category:    category,
		Title:       title,
		Message:     message,
		IsImportant: req.IsImportant,
		ActionURL:   strings.TrimSpace(req.ActionURL),
		ActionText:  strings.TrimSpace(req.ActionText),
		RefID:       req.RefID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}

	return notification, nil
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) (domain.ListNotificationResponse, error) {
	filter := domain.ListNotificationFilter{UnreadOnly: req.UnreadOnly}
	if raw := strings.ToLower(strings.TrimSpace(req.Category)); raw != "" {
		category := domain.NotificationCategory(raw)
		if !category.Valid() {
			return domain.ListNotificationResponse{}, domain.ErrInvalidCategory
		}
		filter.Category = category
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListNotificationResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(notification *domain.Notification) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        notification.ID.String(),
			CreatedAt: notification.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Notification, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Notification{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Notification{}, err
	}
	if item == nil {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotificationNotFound
	}

	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) MarkRead(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	affected, err := s.repo.MarkRead(ctx, s.db, id, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either missing or already read. Distinguish so the caller can 404.
		existing, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotificationNotFound
		}
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx, s.db, s.clock.Now())
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx, s.db)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
