package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/seatwise/seatwise/internal/cache"
	"github.com/seatwise/seatwise/internal/clock"
	"github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const availabilityTTL = 30 * time.Second

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	Invalidation *cache.Invalidation
}

type availabilityKey struct {
	gen       uint64
	productID snowflake.ID
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	invalidation *cache.Invalidation
	availability cache.Cache[availabilityKey, domain.ProductAvailability]
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("purchase.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		invalidation: p.Invalidation,
		availability: cache.NewTTLCache[availabilityKey, domain.ProductAvailability](),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePurchaseRequest) (domain.Purchase, error) {
	serviceName := strings.TrimSpace(req.ServiceName)
	accountDetails := strings.TrimSpace(req.AccountDetails)
	if err := validatePurchase(serviceName, accountDetails, req.PurchasePrice, req.MaxUsers); err != nil {
		return domain.Purchase{}, err
	}

	var productID *snowflake.ID
	if strings.TrimSpace(req.ProductID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
		if err != nil || id == 0 {
			return domain.Purchase{}, domain.ErrInvalidID
		}
		productID = &id
	}

	now := s.clock.Now()
	purchaseDate := now
	if req.PurchaseDate != nil {
		purchaseDate = req.PurchaseDate.UTC()
	}

	purchase := domain.Purchase{
		ID:               s.genID.Generate(),
		ProductID:        productID,
		ServiceName:      serviceName,
		AccountDetails:   accountDetails,
		PurchasePrice:    req.PurchasePrice,
		SalePricePerUser: req.SalePricePerUser,
		MaxUsers:         req.MaxUsers,
		CurrentUsers:     0,
		PurchaseDate:     purchaseDate,
		Status:           domain.PurchaseStatusActive,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &purchase); err != nil {
		return domain.Purchase{}, err
	}

	s.invalidation.Bump()
	return purchase, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePurchaseRequest) (domain.Purchase, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Purchase{}, err
	}

	serviceName := strings.TrimSpace(req.ServiceName)
	accountDetails := strings.TrimSpace(req.AccountDetails)
	if err := validatePurchase(serviceName, accountDetails, req.PurchasePrice, req.MaxUsers); err != nil {
		return domain.Purchase{}, err
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.Purchase{}, err
	}

	var updated domain.Purchase
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		if req.MaxUsers < existing.CurrentUsers {
			return domain.ErrInvalidMaxUsers
		}

		updated = *existing
		updated.ServiceName = serviceName
		updated.AccountDetails = accountDetails
		updated.PurchasePrice = req.PurchasePrice
		updated.SalePricePerUser = req.SalePricePerUser
		updated.MaxUsers = req.MaxUsers
		if status != "" {
			updated.Status = status
		}
		// Capacity change can flip the full flag either way.
		if updated.Status == domain.PurchaseStatusFull && updated.CurrentUsers < updated.MaxUsers {
			updated.Status = domain.PurchaseStatusActive
		}
		if updated.Status == domain.PurchaseStatusActive && updated.CurrentUsers >= updated.MaxUsers {
			updated.Status = domain.PurchaseStatusFull
		}
		updated.Notes = strings.TrimSpace(req.Notes)
		updated.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, &updated)
	})
	if err != nil {
		return domain.Purchase{}, err
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

func (s *Service) List(ctx context.Context, req domain.ListPurchaseRequest) (domain.ListPurchaseResponse, error) {
	filter := domain.ListPurchaseFilter{
		ServiceName: strings.TrimSpace(req.ServiceName),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return domain.ListPurchaseResponse{}, err
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(req.ProductID); raw != "" {
		id, err := s.parseID(raw)
		if err != nil {
			return domain.ListPurchaseResponse{}, err
		}
		filter.ProductID = &id
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
		return domain.ListPurchaseResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(purchase *domain.Purchase) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        purchase.ID.String(),
			CreatedAt: purchase.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	purchases := make([]domain.Purchase, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		purchases = append(purchases, *item)
	}

	resp := domain.ListPurchaseResponse{Purchases: purchases}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Purchase, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Purchase{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if item == nil {
		return domain.Purchase{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Availability(ctx context.Context, rawProductID string) (domain.ProductAvailability, error) {
	productID, err := s.parseID(rawProductID)
	if err != nil {
		return domain.ProductAvailability{}, err
	}

	key := availabilityKey{gen: s.invalidation.Gen(), productID: productID}
	if cached, ok := s.availability.Get(key); ok {
		return cached, nil
	}

	purchases, err := s.repo.ListActiveByProduct(ctx, s.db, productID)
	if err != nil {
		return domain.ProductAvailability{}, err
	}

	availability := domain.ProductAvailability{ProductID: productID}
	for _, p := range purchases {
		availability.TotalSeats += p.MaxUsers
		availability.ClaimedSeats += p.CurrentUsers
		availability.AvailableSeats += p.SeatsLeft()
	}

	s.availability.Set(key, availability, availabilityTTL)
	return availability, nil
}

func (s *Service) ClaimSeat(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Purchase, error) {
	purchase, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	if purchase.Status != domain.PurchaseStatusActive {
		if purchase.Status == domain.PurchaseStatusFull {
			return nil, domain.ErrNoSeatsLeft
		}
		return nil, domain.ErrPurchaseNotSellable
	}
	if purchase.SeatsLeft() == 0 {
		return nil, domain.ErrNoSeatsLeft
	}

	purchase.CurrentUsers++
	if purchase.CurrentUsers >= purchase.MaxUsers {
		purchase.Status = domain.PurchaseStatusFull
	}
	if err := s.repo.UpdateSeats(ctx, tx, id, purchase.CurrentUsers, purchase.Status); err != nil {
		return nil, err
	}

	s.invalidation.Bump()
	return purchase, nil
}

func (s *Service) ReleaseSeat(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	purchase, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if purchase == nil {
		return domain.ErrNotFound
	}
	if purchase.CurrentUsers == 0 {
		return nil
	}

	purchase.CurrentUsers--
	if purchase.Status == domain.PurchaseStatusFull && purchase.CurrentUsers < purchase.MaxUsers {
		purchase.Status = domain.PurchaseStatusActive
	}
	if err := s.repo.UpdateSeats(ctx, tx, id, purchase.CurrentUsers, purchase.Status); err != nil {
		return err
	}

	s.invalidation.Bump()
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseStatus(raw string) (domain.PurchaseStatus, error) {
	switch domain.PurchaseStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case domain.PurchaseStatusActive:
		return domain.PurchaseStatusActive, nil
	case domain.PurchaseStatusFull:
		return domain.PurchaseStatusFull, nil
	case domain.PurchaseStatusExpired:
		return domain.PurchaseStatusExpired, nil
	case domain.PurchaseStatusCancelled:
		return domain.PurchaseStatusCancelled, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func validatePurchase(serviceName, accountDetails string, purchasePrice float64, maxUsers int) error {
	if utf8.RuneCountInString(serviceName) < 2 {
		return domain.ErrInvalidServiceName
	}
	if utf8.RuneCountInString(accountDetails) < 5 {
		return domain.ErrInvalidAccountDetails
	}
	if purchasePrice <= 0 {
		return domain.ErrInvalidPurchasePrice
	}
	if maxUsers < 1 {
		return domain.ErrInvalidMaxUsers
	}
	return nil
}
