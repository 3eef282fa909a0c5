package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	productdomain "github.com/seatwise/seatwise/internal/product/domain"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/internal/subscription/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const renewalPaymentTermDays = 7

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	ProductRepo  productdomain.Repository
	PurchaseRepo purchasedomain.Repository
	PurchaseSvc  purchasedomain.Service
	InvoiceRepo  invoicedomain.Repository
	Invalidation *cache.Invalidation
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
	productRepo  productdomain.Repository
	purchaseRepo purchasedomain.Repository
	purchaseSvc  purchasedomain.Service
	invoiceRepo  invoicedomain.Repository
	invalidation *cache.Invalidation
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("subscription.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		productRepo:  p.ProductRepo,
		purchaseRepo: p.PurchaseRepo,
		purchaseSvc:  p.PurchaseSvc,
		invoiceRepo:  p.InvoiceRepo,
		invalidation: p.Invalidation,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Subscription{}, err
	}
	tierID, err := s.parseID(req.PricingTierID)
	if err != nil {
		return domain.Subscription{}, err
	}
	var purchaseID *snowflake.ID
	if strings.TrimSpace(req.PurchaseID) != "" {
		id, err := s.parseID(req.PurchaseID)
		if err != nil {
			return domain.Subscription{}, err
		}
		purchaseID = &id
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return domain.Subscription{}, domain.ErrInvalidDiscount
	}

	now := s.clock.Now()
	startDate := now
	if req.StartDate != nil {
		startDate = req.StartDate.UTC()
	}

	var created domain.Subscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}

		tier, err := s.productRepo.FindTierByID(ctx, tx, tierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return domain.ErrTierNotFound
		}

		var purchase *purchasedomain.Purchase
		if purchaseID != nil {
			// Claiming under the row lock ties the seat to this insert.
			purchase, err = s.purchaseSvc.ClaimSeat(ctx, tx, *purchaseID)
			if err != nil {
				return err
			}
		}

		quote, err := s.quoteForTier(ctx, tx, tier, purchase, req.DiscountPercentage, req.CustomPrice)
		if err != nil {
			return err
		}

		created = domain.Subscription{
			ID:                 s.genID.Generate(),
			CustomerID:         customerID,
			PricingTierID:      tierID,
			PurchaseID:         purchaseID,
			StartDate:          startDate,
			EndDate:            domain.AddMonths(startDate, tier.DurationMonths),
			Status:             domain.SubscriptionStatusActive,
			DiscountPercentage: req.DiscountPercentage,
			FinalPrice:         quote.FinalPrice,
			CustomPrice:        req.CustomPrice,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return s.repo.Insert(ctx, tx, &created)
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.invalidation.Bump()
	return created, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubscriptionRequest) (domain.ListSubscriptionResponse, error) {
	filter := domain.ListSubscriptionFilter{}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := s.parseID(raw)
		if err != nil {
			return domain.ListSubscriptionResponse{}, err
		}
		filter.CustomerID = &id
	}
	if raw := strings.ToLower(strings.TrimSpace(req.Status)); raw != "" {
		switch domain.SubscriptionStatus(raw) {
		case domain.SubscriptionStatusActive, domain.SubscriptionStatusExpired, domain.SubscriptionStatusCancelled:
			filter.Status = domain.SubscriptionStatus(raw)
		default:
			return domain.ListSubscriptionResponse{}, domain.ErrInvalidID
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
		return domain.ListSubscriptionResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(subscription *domain.Subscription) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        subscription.ID.String(),
			CreatedAt: subscription.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	subscriptions := make([]domain.Subscription, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		subscriptions = append(subscriptions, *item)
	}

	resp := domain.ListSubscriptionResponse{Subscriptions: subscriptions}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Subscription, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Subscription{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if item == nil {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}

	return *item, nil
}

func (s *Service) Cancel(ctx context.Context, rawID string) (domain.Subscription, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Subscription{}, err
	}

	var updated domain.Subscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrSubscriptionNotFound
		}
		if existing.Status != domain.SubscriptionStatusActive {
			return domain.ErrSubscriptionNotActive
		}

		if existing.PurchaseID != nil {
			if err := s.purchaseSvc.ReleaseSeat(ctx, tx, *existing.PurchaseID); err != nil {
				return err
			}
		}

		updated = *existing
		updated.Status = domain.SubscriptionStatusCancelled
		updated.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, &updated)
	})
	if err != nil {
		return domain.Subscription{}, err
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
		existing, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrSubscriptionNotFound
		}
		if existing.Status == domain.SubscriptionStatusActive && existing.PurchaseID != nil {
			if err := s.purchaseSvc.ReleaseSeat(ctx, tx, *existing.PurchaseID); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.invalidation.Bump()
	return nil
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	tierID, err := s.parseID(req.PricingTierID)
	if err != nil {
		return domain.Quote{}, err
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return domain.Quote{}, domain.ErrInvalidDiscount
	}

	tier, err := s.productRepo.FindTierByID(ctx, s.db, tierID)
	if err != nil {
		return domain.Quote{}, err
	}
	if tier == nil {
		return domain.Quote{}, domain.ErrTierNotFound
	}

	var purchase *purchasedomain.Purchase
	if strings.TrimSpace(req.PurchaseID) != "" {
		purchaseID, err := s.parseID(req.PurchaseID)
		if err != nil {
			return domain.Quote{}, err
		}
		purchase, err = s.purchaseRepo.FindByID(ctx, s.db, purchaseID)
		if err != nil {
			return domain.Quote{}, err
		}
		if purchase == nil {
			return domain.Quote{}, purchasedomain.ErrNotFound
		}
	}

	return s.quoteForTier(ctx, s.db, tier, purchase, req.DiscountPercentage, req.CustomPrice)
}

func (s *Service) Renew(ctx context.Context, rawID string) (domain.RenewResult, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.RenewResult{}, err
	}

	var result domain.RenewResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrSubscriptionNotFound
		}
		if existing.Status == domain.SubscriptionStatusCancelled {
			return domain.ErrSubscriptionNotRenewable
		}

		tier, err := s.productRepo.FindTierByID(ctx, tx, existing.PricingTierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return domain.ErrTierNotFound
		}

		var salePerUser float64
		if existing.PurchaseID != nil {
			purchase, err := s.purchaseRepo.FindByID(ctx, tx, *existing.PurchaseID)
			if err != nil {
				return err
			}
			if purchase != nil {
				salePerUser = purchase.SalePricePerUser
			}
		}

		now := s.clock.Now()
		updated := *existing
		updated.EndDate = domain.AddMonths(existing.EndDate, tier.DurationMonths)
		updated.Status = domain.SubscriptionStatusActive
		updated.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}

		amount := updated.EffectivePrice(salePerUser, tier.Price)
		subscriptionID := updated.ID
		renewalInvoice := invoicedomain.Invoice{
			ID:             s.genID.Generate(),
			CustomerID:     updated.CustomerID,
			SubscriptionID: &subscriptionID,
			TotalAmount:    amount,
			Status:         invoicedomain.InvoiceStatusPending,
			IssueDate:      now,
			DueDate:        now.AddDate(0, 0, renewalPaymentTermDays),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.invoiceRepo.Insert(ctx, tx, &renewalInvoice); err != nil {
			return err
		}

		result = domain.RenewResult{
			Subscription: updated,
			InvoiceID:    renewalInvoice.ID,
			Amount:       amount,
		}
		return nil
	})
	if err != nil {
		return domain.RenewResult{}, err
	}

	s.invalidation.Bump()
	return result, nil
}

func (s *Service) ListExpiring(ctx context.Context, windowDays int) ([]domain.ExpiringSubscription, error) {
	if windowDays <= 0 {
		windowDays = 5
	}

	now := s.clock.Now()
	today := now.Truncate(24 * time.Hour)
	until := today.AddDate(0, 0, windowDays).Add(24*time.Hour - time.Nanosecond)

	items, err := s.repo.ListActiveEndingBetween(ctx, s.db, today, until)
	if err != nil {
		return nil, err
	}

	expiring := make([]domain.ExpiringSubscription, 0, len(items))
	for _, item := range items {
		daysLeft := domain.DaysLeft(now, item.EndDate)
		expiring = append(expiring, domain.ExpiringSubscription{
			Subscription: item,
			DaysLeft:     daysLeft,
			Window:       domain.ClassifyExpiry(daysLeft),
		})
	}

	return expiring, nil
}

func (s *Service) MarkExpired(ctx context.Context, limit int) (int, error) {
	now := s.clock.Now()
	today := now.Truncate(24 * time.Hour)

	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.repo.ListActiveEndedBefore(ctx, tx, today, limit)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.PurchaseID != nil {
				if err := s.purchaseSvc.ReleaseSeat(ctx, tx, *item.PurchaseID); err != nil {
					return err
				}
			}
			item.Status = domain.SubscriptionStatusExpired
			item.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, &item); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.log.Info("subscriptions expired", zap.Int("count", count))
		s.invalidation.Bump()
	}
	return count, nil
}

func (s *Service) quoteForTier(ctx context.Context, tx *gorm.DB, tier *productdomain.PricingTier, purchase *purchasedomain.Purchase, discountPercentage float64, customPrice *float64) (domain.Quote, error) {
	var productPrice float64
	product, err := s.productRepo.FindByID(ctx, tx, tier.ProductID)
	if err != nil {
		return domain.Quote{}, err
	}
	if product != nil {
		productPrice = product.Price
	}

	var salePerUser, costPerSeat float64
	if purchase != nil {
		salePerUser = purchase.SalePricePerUser
		costPerSeat = purchase.CostPerSeat()
	}

	base := domain.BaseMonthlyPrice(salePerUser, costPerSeat, tier.Price, productPrice)
	return domain.ComputeQuote(base, tier.DurationMonths, discountPercentage, customPrice), nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
