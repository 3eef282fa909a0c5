// Package scheduler runs the periodic maintenance jobs: flipping overdue
// invoices, expiring finished subscriptions, and dispatching expiry
// reminders.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/clock"
	"github.com/seatwise/seatwise/internal/config"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	notificationdomain "github.com/seatwise/seatwise/internal/notification/domain"
	"github.com/seatwise/seatwise/internal/notifier"
	subscriptiondomain "github.com/seatwise/seatwise/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobTimeout = 30 * time.Second

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	ConfigHolder    *config.SchedulerConfigHolder
	InvoiceSvc      invoicedomain.Service
	SubscriptionSvc subscriptiondomain.Service
	NotificationSvc notificationdomain.Service
	CustomerRepo    customerdomain.Repository
	Notifier        *notifier.Client
}

type Scheduler struct {
	db              *gorm.DB
	log             *zap.Logger
	clock           clock.Clock
	holder          *config.SchedulerConfigHolder
	invoiceSvc      invoicedomain.Service
	subscriptionSvc subscriptiondomain.Service
	notificationSvc notificationdomain.Service
	customerRepo    customerdomain.Repository
	notifier        *notifier.Client
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:              p.DB,
		log:             p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:           p.Clock,
		holder:          p.ConfigHolder,
		invoiceSvc:      p.InvoiceSvc,
		subscriptionSvc: p.SubscriptionSvc,
		notificationSvc: p.NotificationSvc,
		customerRepo:    p.CustomerRepo,
		notifier:        p.Notifier,
	}
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Warn("job timed out", zap.Duration("elapsed", elapsed), zap.Error(err))
			return nil
		}
		log.Warn("job failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Debug("job finished", zap.Duration("elapsed", elapsed))
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "overdue_invoices", s.OverdueInvoicesJob))
	err = errors.Join(err, s.runJob(parent, "expire_subscriptions", s.ExpireSubscriptionsJob))
	err = errors.Join(err, s.runJob(parent, "expiry_reminders", s.ExpiryRemindersJob))
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.holder.Get().RunInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Pick up hot-reloaded intervals between runs.
		if next := s.holder.Get().RunInterval; next != interval {
			interval = next
			ticker.Reset(interval)
			s.log.Info("run interval updated", zap.Duration("interval", interval))
		}
	}
}

// OverdueInvoicesJob flips pending invoices past their due date to overdue.
func (s *Scheduler) OverdueInvoicesJob(ctx context.Context) error {
	cfg := s.holder.Get()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		count, err := s.invoiceSvc.MarkOverduePending(ctx, cfg.BatchSize)
		if err != nil {
			return err
		}
		if count < cfg.BatchSize {
			return nil
		}
	}
}

// ExpireSubscriptionsJob transitions active subscriptions past their end date
// to expired, releasing any claimed seats.
func (s *Scheduler) ExpireSubscriptionsJob(ctx context.Context) error {
	cfg := s.holder.Get()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		count, err := s.subscriptionSvc.MarkExpired(ctx, cfg.BatchSize)
		if err != nil {
			return err
		}
		if count < cfg.BatchSize {
			return nil
		}
	}
}

// ExpiryRemindersJob records one in-app notification per subscription nearing
// its end date and forwards the batch to the external notifier when one is
// configured. A subscription is reminded at most once per day.
func (s *Scheduler) ExpiryRemindersJob(ctx context.Context) error {
	cfg := s.holder.Get()
	expiring, err := s.subscriptionSvc.ListExpiring(ctx, cfg.ExpiryWindowDays)
	if err != nil {
		return err
	}
	if len(expiring) == 0 {
		return nil
	}

	now := s.clock.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var jobErr error
	reminders := make([]notifier.Reminder, 0, len(expiring))
	for _, item := range expiring {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		subscriptionID := item.Subscription.ID
		sent, err := s.reminderSentToday(ctx, subscriptionID, startOfDay)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			continue
		}
		if sent {
			continue
		}

		customerName := s.lookupCustomerName(ctx, item.Subscription.CustomerID)
		if _, err := s.notificationSvc.Create(ctx, notificationdomain.CreateNotificationRequest{
			Type:        string(notificationdomain.NotificationTypeWarning),
			Category:    string(notificationdomain.CategorySubscription),
			Title:       reminderTitle(item),
			Message:     reminderMessage(item, customerName),
			IsImportant: item.DaysLeft <= 1,
			RefID:       &subscriptionID,
		}); err != nil {
			jobErr = errors.Join(jobErr, err)
			continue
		}

		reminders = append(reminders, notifier.Reminder{
			SubscriptionID: subscriptionID.String(),
			CustomerID:     item.Subscription.CustomerID.String(),
			CustomerName:   customerName,
			EndDate:        item.Subscription.EndDate.Format(time.RFC3339),
			DaysLeft:       item.DaysLeft,
			Window:         string(item.Window),
		})
	}

	if len(reminders) > 0 && s.notifier.Enabled() {
		if err := s.notifier.Send(ctx, reminders); err != nil {
			jobErr = errors.Join(jobErr, err)
		}
	}

	return jobErr
}

func (s *Scheduler) reminderSentToday(ctx context.Context, subscriptionID snowflake.ID, startOfDay time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&notificationdomain.Notification{}).
		Where("ref_id = ? AND category = ? AND created_at >= ?",
			subscriptionID, notificationdomain.CategorySubscription, startOfDay).
		Count(&count).Error
	return count > 0, err
}

func (s *Scheduler) lookupCustomerName(ctx context.Context, customerID snowflake.ID) string {
	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil || customer == nil {
		return ""
	}
	return customer.Name
}

func reminderTitle(item subscriptiondomain.ExpiringSubscription) string {
	switch item.Window {
	case subscriptiondomain.ExpiryWindowToday:
		return "Subscription expires today"
	case subscriptiondomain.ExpiryWindowTomorrow:
		return "Subscription expires tomorrow"
	default:
		return fmt.Sprintf("Subscription expires in %d days", item.DaysLeft)
	}
}

func reminderMessage(item subscriptiondomain.ExpiringSubscription, customerName string) string {
	who := customerName
	if who == "" {
		who = "customer " + item.Subscription.CustomerID.String()
	}
	return fmt.Sprintf("Subscription %s for %s ends on %s.",
		item.Subscription.ID, who, item.Subscription.EndDate.Format("2 January 2006"))
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(Run),
)

// Run starts the scheduler loop on application start and stops it with the
// application.
func Run(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
