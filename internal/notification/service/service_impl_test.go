package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/seatwise/seatwise/internal/clock"
	"github.com/seatwise/seatwise/internal/notification/domain"
	"github.com/seatwise/seatwise/internal/notification/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, time.August, 30, 11, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return db, svc
}

func createNotification(t *testing.T, svc domain.Service, category, title string) domain.Notification {
	t.Helper()
	notification, err := svc.Create(context.Background(), domain.CreateNotificationRequest{
		Type:     "warning",
		Category: category,
		Title:    title,
		Message:  "Subscription for Acme Corp expires in 3 days",
	})
	require.NoError(t, err)
	return notification
}

func TestCreateNotification_Defaults(t *testing.T) {
	_, svc := newTestService(t)

	notification, err := svc.Create(context.Background(), domain.CreateNotificationRequest{
		Title:   "  Maintenance window  ",
		Message: "Nightly backup moved to 02:00 UTC",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationTypeInfo, notification.Type)
	assert.Equal(t, domain.CategorySystem, notification.Category)
	assert.Equal(t, "Maintenance window", notification.Title)
	assert.False(t, notification.IsRead)
}

func TestCreateNotification_Validation(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateNotificationRequest{
		Type:    "shout",
		Title:   "Expiring soon",
		Message: "msg",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = svc.Create(ctx, domain.CreateNotificationRequest{
		Category: "gossip",
		Title:    "Expiring soon",
		Message:  "msg",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.Create(ctx, domain.CreateNotificationRequest{
		Title:   "   ",
		Message: "msg",
	})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = svc.Create(ctx, domain.CreateNotificationRequest{
		Title:   "Expiring soon",
		Message: "",
	})
	assert.ErrorIs(t, err, domain.ErrMessageRequired)
}

func TestMarkRead(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()
	notification := createNotification(t, svc, "subscription", "Expiring soon")

	require.NoError(t, svc.MarkRead(ctx, notification.ID.String()))

	var stored domain.Notification
	require.NoError(t, db.First(&stored, "id = ?", notification.ID).Error)
	assert.True(t, stored.IsRead)

	// Marking an already read notification is a no-op, not an error.
	require.NoError(t, svc.MarkRead(ctx, notification.ID.String()))

	assert.ErrorIs(t, svc.MarkRead(ctx, "999999999999999999"), domain.ErrNotificationNotFound)
}

func TestMarkAllRead_And_UnreadCount(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	createNotification(t, svc, "subscription", "Expiring today")
	createNotification(t, svc, "invoice", "Invoice overdue")
	read := createNotification(t, svc, "system", "Backup done")
	require.NoError(t, svc.MarkRead(ctx, read.ID.String()))

	unread, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	updated, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestListNotifications_Filters(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	expiring := createNotification(t, svc, "subscription", "Expiring soon")
	overdue := createNotification(t, svc, "invoice", "Invoice overdue")
	require.NoError(t, svc.MarkRead(ctx, overdue.ID.String()))

	resp, err := svc.List(ctx, domain.ListNotificationRequest{Category: "subscription"})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, expiring.ID, resp.Notifications[0].ID)

	resp, err = svc.List(ctx, domain.ListNotificationRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, expiring.ID, resp.Notifications[0].ID)

	_, err = svc.List(ctx, domain.ListNotificationRequest{Category: "gossip"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestDeleteNotification(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	notification := createNotification(t, svc, "system", "Backup done")

	require.NoError(t, svc.Delete(ctx, notification.ID.String()))

	_, err := svc.GetByID(ctx, notification.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, notification.ID.String()), domain.ErrNotificationNotFound)
}
