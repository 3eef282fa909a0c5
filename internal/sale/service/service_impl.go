package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/internal/sale/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	PurchaseSvc  purchasedomain.Service
	Invalidation *cache.Invalidation
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
	purchaseSvc  purchasedomain.Service
	invalidation *cache.Invalidation
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("sale.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		purchaseSvc:  p.PurchaseSvc,
		invalidation: p.Invalidation,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.Sale, error) {
	purchaseID, err := s.parseID(req.PurchaseID)
	if err != nil {
		return domain.Sale{}, err
	}
	customerID, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Sale{}, err
	}

	accessDetails := strings.TrimSpace(req.AccessDetails)
	if req.SalePrice <= 0 {
		return domain.Sale{}, domain.ErrInvalidSalePrice
	}
	if utf8.RuneCountInString(accessDetails) < 5 {
		return domain.Sale{}, domain.ErrInvalidAccessDetails
	}

	now := s.clock.Now()
	saleDate := now
	if req.SaleDate != nil {
		saleDate = req.SaleDate.UTC()
	}

	sale := domain.Sale{
		ID:            s.genID.Generate(),
		PurchaseID:    purchaseID,
		CustomerID:    customerID,
		SalePrice:     req.SalePrice,
		SaleDate:      saleDate,
		AccessDetails: accessDetails,
		Status:        domain.SaleStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Seat claim and sale insert commit together; the purchase row is locked
	// so two concurrent sales cannot both take the last seat.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrCustomerNotFound
		}

		if _, err := s.purchaseSvc.ClaimSeat(ctx, tx, purchaseID); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &sale)
	})
	if err != nil {
		return domain.Sale{}, err
	}

	s.invalidation.Bump()
	return sale, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSaleRequest) (domain.Sale, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	accessDetails := strings.TrimSpace(req.AccessDetails)
	if req.SalePrice <= 0 {
		return domain.Sale{}, domain.ErrInvalidSalePrice
	}
	if utf8.RuneCountInString(accessDetails) < 5 {
		return domain.Sale{}, domain.ErrInvalidAccessDetails
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.Sale{}, err
	}

	var updated domain.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		updated = *existing
		updated.SalePrice = req.SalePrice
		updated.AccessDetails = accessDetails
		if status != "" {
			// Leaving active releases the seat; nothing re-claims it here,
			// reactivation goes through a new sale.
			if existing.Status == domain.SaleStatusActive && status != domain.SaleStatusActive {
				if err := s.purchaseSvc.ReleaseSeat(ctx, tx, existing.PurchaseID); err != nil {
					return err
				}
			}
			updated.Status = status
		}
		updated.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, &updated)
	})
	if err != nil {
		return domain.Sale{}, err
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
		if existing.Status == domain.SaleStatusActive {
			if err := s.purchaseSvc.ReleaseSeat(ctx, tx, existing.PurchaseID); err != nil {
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

func (s *Service) List(ctx context.Context, req domain.ListSaleRequest) (domain.ListSaleResponse, error) {
	filter := domain.ListSaleFilter{}
	if raw := strings.TrimSpace(req.PurchaseID); raw != "" {
		id, err := s.parseID(raw)
		if err != nil {
			return domain.ListSaleResponse{}, err
		}
		filter.PurchaseID = &id
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := s.parseID(raw)
		if err != nil {
			return domain.ListSaleResponse{}, err
		}
		filter.CustomerID = &id
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return domain.ListSaleResponse{}, err
		}
		filter.Status = status
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
		return domain.ListSaleResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(sale *domain.Sale) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        sale.ID.String(),
			CreatedAt: sale.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sales = append(sales, *item)
	}

	resp := domain.ListSaleResponse{Sales: sales}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Sale, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Sale{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if item == nil {
		return domain.Sale{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseStatus(raw string) (domain.SaleStatus, error) {
	switch domain.SaleStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case domain.SaleStatusActive:
		return domain.SaleStatusActive, nil
	case domain.SaleStatusExpired:
		return domain.SaleStatusExpired, nil
	case domain.SaleStatusCancelled:
		return domain.SaleStatusCancelled, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
