package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/seatwise/seatwise/internal/product/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if err := validateProduct(name, description, req.Price, req.MaxUsers); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		Category:    strings.TrimSpace(req.Category),
		Features:    cleanFeatures(req.Features),
		Price:       req.Price,
		MaxUsers:    req.MaxUsers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (domain.Product, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Product{}, err
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if err := validateProduct(name, description, req.Price, req.MaxUsers); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		updated = *existing
		updated.Name = name
		updated.Slug = slug.Make(name)
		updated.Description = description
		updated.Category = strings.TrimSpace(req.Category)
		updated.Features = cleanFeatures(req.Features)
		updated.Price = req.Price
		updated.MaxUsers = req.MaxUsers
		updated.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, &updated)
	})
	if err != nil {
		return domain.Product{}, err
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) (domain.ListProductResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListProductFilter{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListProductResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	resp := domain.ListProductResponse{Products: products}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.ProductDetail, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.ProductDetail{}, err
	}

	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	if product == nil {
		return domain.ProductDetail{}, domain.ErrNotFound
	}

	tiers, err := s.repo.ListTiersByProduct(ctx, s.db, id)
	if err != nil {
		return domain.ProductDetail{}, err
	}

	return domain.ProductDetail{Product: *product, Tiers: tiers}, nil
}

func (s *Service) CreateTier(ctx context.Context, req domain.CreateTierRequest) (domain.PricingTier, error) {
	productID, err := s.parseID(req.ProductID)
	if err != nil {
		return domain.PricingTier{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.PricingTier{}, domain.ErrInvalidName
	}
	if req.DurationMonths < 1 {
		return domain.PricingTier{}, domain.ErrInvalidDuration
	}
	if req.Price < 0 {
		return domain.PricingTier{}, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	tier := domain.PricingTier{
		ID:                 s.genID.Generate(),
		ProductID:          productID,
		Name:               name,
		DurationMonths:     req.DurationMonths,
		Price:              req.Price,
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		Features:           cleanFeatures(req.Features),
		IsRecommended:      req.IsRecommended,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		return s.repo.InsertTier(ctx, tx, &tier)
	})
	if err != nil {
		return domain.PricingTier{}, err
	}

	return tier, nil
}

func (s *Service) UpdateTier(ctx context.Context, req domain.UpdateTierRequest) (domain.PricingTier, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.PricingTier{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.PricingTier{}, domain.ErrInvalidName
	}
	if req.DurationMonths < 1 {
		return domain.PricingTier{}, domain.ErrInvalidDuration
	}
	if req.Price < 0 {
		return domain.PricingTier{}, domain.ErrInvalidPrice
	}

	var updated domain.PricingTier
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindTierByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrTierNotFound
		}

		updated = *existing
		updated.Name = name
		updated.DurationMonths = req.DurationMonths
		updated.Price = req.Price
		updated.OriginalPrice = req.OriginalPrice
		updated.DiscountPercentage = req.DiscountPercentage
		updated.Features = cleanFeatures(req.Features)
		updated.IsRecommended = req.IsRecommended
		updated.UpdatedAt = time.Now().UTC()
		return s.repo.UpdateTier(ctx, tx, &updated)
	})
	if err != nil {
		return domain.PricingTier{}, err
	}

	return updated, nil
}

func (s *Service) DeleteTier(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindTierByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrTierNotFound
		}
		return s.repo.DeleteTier(ctx, tx, id)
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validateProduct(name, description string, price float64, maxUsers int) error {
	if utf8.RuneCountInString(name) < 2 {
		return domain.ErrInvalidName
	}
	if utf8.RuneCountInString(description) < 10 {
		return domain.ErrInvalidDescription
	}
	if price < 0 {
		return domain.ErrInvalidPrice
	}
	if maxUsers < 1 {
		return domain.ErrInvalidMaxUsers
	}
	return nil
}

func cleanFeatures(raw []string) datatypes.JSONSlice[string] {
	features := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		features = append(features, f)
	}
	return datatypes.NewJSONSlice(features)
}
