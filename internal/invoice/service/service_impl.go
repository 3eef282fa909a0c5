package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	"github.com/seatwise/seatwise/internal/invoice/domain"
	"github.com/seatwise/seatwise/pkg/db"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPaymentTermDays = 14

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Invalidation *cache.Invalidation
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
	invalidation *cache.Invalidation
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		invalidation: p.Invalidation,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceDetail, error) {
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	now := s.clock.Now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = req.IssueDate.UTC()
	}
	dueDate := issueDate.AddDate(0, 0, defaultPaymentTermDays)
	if req.DueDate != nil {
		dueDate = req.DueDate.UTC()
	}

	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Status:     domain.InvoiceStatusPending,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var items []domain.InvoiceItem
	if len(req.Items) > 0 {
		for _, line := range req.Items {
			subscriptionID, err := s.parseID(line.SubscriptionID)
			if err != nil {
				return domain.InvoiceDetail{}, err
			}
			if line.Amount <= 0 {
				return domain.InvoiceDetail{}, domain.ErrInvalidAmount
			}
			items = append(items, domain.InvoiceItem{
				ID:             s.genID.Generate(),
				InvoiceID:      invoice.ID,
				SubscriptionID: subscriptionID,
				Amount:         line.Amount,
				Description:    strings.TrimSpace(line.Description),
				CreatedAt:      now,
			})
			invoice.TotalAmount += line.Amount
		}
	} else {
		// Legacy single-subscription invoice.
		if strings.TrimSpace(req.SubscriptionID) == "" {
			return domain.InvoiceDetail{}, domain.ErrNoItems
		}
		subscriptionID, err := s.parseID(req.SubscriptionID)
		if err != nil {
			return domain.InvoiceDetail{}, err
		}
		if req.Amount <= 0 {
			return domain.InvoiceDetail{}, domain.ErrInvalidAmount
		}
		invoice.SubscriptionID = &subscriptionID
		invoice.TotalAmount = req.Amount
	}

	// Invoice and its lines are written in one transaction; a failure on any
	// line rolls back the whole invoice.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}

		for _, item := range items {
			existing, err := s.repo.FindItemBySubscription(ctx, tx, item.SubscriptionID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrSubscriptionInvoiced
			}
		}
		if invoice.SubscriptionID != nil {
			open, err := s.repo.FindOpenBySubscription(ctx, tx, *invoice.SubscriptionID)
			if err != nil {
				return err
			}
			if open != nil {
				return domain.ErrSubscriptionInvoiced
			}
		}

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.InvoiceDetail{}, domain.ErrSubscriptionInvoiced
		}
		return domain.InvoiceDetail{}, err
	}

	s.invalidation.Bump()
	return domain.InvoiceDetail{Invoice: invoice, Items: items}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		IssuedFrom: req.IssuedFrom,
		IssuedTo:   req.IssuedTo,
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := s.parseID(raw)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.CustomerID = &id
	}
	if raw := strings.ToLower(strings.TrimSpace(req.Status)); raw != "" {
		switch domain.InvoiceStatus(raw) {
		case domain.InvoiceStatusPending, domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue:
			filter.Status = domain.InvoiceStatus(raw)
		default:
			return domain.ListInvoiceResponse{}, domain.ErrInvalidID
		}
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.InvoiceDetail, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{Invoice: *invoice, Items: items}, nil
}

func (s *Service) MarkPaid(ctx context.Context, rawID string) (domain.Invoice, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if existing.Status == domain.InvoiceStatusPaid {
			return domain.ErrAlreadyPaid
		}

		now := s.clock.Now()
		updated = *existing
		updated.Status = domain.InvoiceStatusPaid
		updated.PaidDate = &now
		updated.UpdatedAt = now
		return s.repo.Update(ctx, tx, &updated)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.invalidation.Bump()
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.invalidation.Bump()
	return nil
}

func (s *Service) MarkOverduePending(ctx context.Context, limit int) (int, error) {
	count, err := s.repo.MarkOverdue(ctx, s.db, s.clock.Now(), limit)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("invoices marked overdue", zap.Int("count", count))
		s.invalidation.Bump()
	}
	return count, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
