package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/seatwise/seatwise/internal/product/domain"
	"github.com/seatwise/seatwise/internal/product/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.Product{}, &domain.PricingTier{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return db, svc
}

func createProduct(t *testing.T, svc domain.Service, name string) domain.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), domain.CreateProductRequest{
		Name:        name,
		Description: "Shared team workspace with project boards",
		Category:    "productivity",
		Features:    []string{"boards", "timeline"},
		Price:       120,
		MaxUsers:    10,
	})
	require.NoError(t, err)
	return product
}

func TestCreateProduct(t *testing.T) {
	_, svc := newTestService(t)

	product, err := svc.Create(context.Background(), domain.CreateProductRequest{
		Name:        "  Design Suite Pro  ",
		Description: "Full design toolkit for small teams",
		Category:    " design ",
		Features:    []string{" vector editor ", "", "prototyping"},
		Price:       250,
		MaxUsers:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, "Design Suite Pro", product.Name)
	assert.Equal(t, "design-suite-pro", product.Slug)
	assert.Equal(t, "design", product.Category)
	assert.Equal(t, []string{"vector editor", "prototyping"}, []string(product.Features))
	assert.False(t, product.CreatedAt.IsZero())
}

func TestCreateProduct_Validation(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateProductRequest{
		Name:        "X",
		Description: "Long enough description",
		Price:       10,
		MaxUsers:    1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	// Minimum lengths count characters, not bytes: "é" is two bytes
	// but still only one character.
	_, err = svc.Create(ctx, domain.CreateProductRequest{
		Name:        "é",
		Description: "Long enough description",
		Price:       10,
		MaxUsers:    1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateProductRequest{
		Name:        "Design Suite",
		Description: "too short",
		Price:       10,
		MaxUsers:    1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)

	_, err = svc.Create(ctx, domain.CreateProductRequest{
		Name:        "Design Suite",
		Description: "Long enough description",
		Price:       -1,
		MaxUsers:    1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateProductRequest{
		Name:        "Design Suite",
		Description: "Long enough description",
		Price:       10,
		MaxUsers:    0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMaxUsers)
}

func TestUpdateProduct_RefreshesSlug(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	updated, err := svc.Update(ctx, domain.UpdateProductRequest{
		ID:          product.ID.String(),
		Name:        "Team Workspace Plus",
		Description: product.Description,
		Category:    product.Category,
		Features:    []string(product.Features),
		Price:       150,
		MaxUsers:    12,
	})
	require.NoError(t, err)

	assert.Equal(t, "team-workspace-plus", updated.Slug)
	assert.Equal(t, float64(150), updated.Price)
	assert.True(t, updated.UpdatedAt.After(product.UpdatedAt) || updated.UpdatedAt.Equal(product.UpdatedAt))

	_, err = svc.Update(ctx, domain.UpdateProductRequest{
		ID:          "999999999999999999",
		Name:        "Ghost Product",
		Description: "Long enough description",
		Price:       10,
		MaxUsers:    1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProduct_IncludesTiers(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	monthly, err := svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Monthly",
		DurationMonths: 1,
		Price:          15,
	})
	require.NoError(t, err)

	_, err = svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Annual",
		DurationMonths: 12,
		Price:          150,
		IsRecommended:  true,
	})
	require.NoError(t, err)

	detail, err := svc.GetByID(ctx, product.ID.String())
	require.NoError(t, err)

	assert.Equal(t, product.ID, detail.ID)
	require.Len(t, detail.Tiers, 2)
	assert.Equal(t, monthly.ID, detail.Tiers[0].ID)

	_, err = svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestCreateTier_UnknownProduct(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.CreateTier(context.Background(), domain.CreateTierRequest{
		ProductID:      "999999999999999999",
		Name:           "Monthly",
		DurationMonths: 1,
		Price:          15,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateTier_Validation(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	_, err := svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "  ",
		DurationMonths: 1,
		Price:          15,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Monthly",
		DurationMonths: 0,
		Price:          15,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Monthly",
		DurationMonths: 1,
		Price:          -5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpdateTier(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	tier, err := svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Monthly",
		DurationMonths: 1,
		Price:          15,
	})
	require.NoError(t, err)

	discount := 20.0
	updated, err := svc.UpdateTier(ctx, domain.UpdateTierRequest{
		ID:                 tier.ID.String(),
		Name:               "Monthly Promo",
		DurationMonths:     1,
		Price:              12,
		DiscountPercentage: &discount,
	})
	require.NoError(t, err)

	assert.Equal(t, "Monthly Promo", updated.Name)
	assert.Equal(t, float64(12), updated.Price)
	require.NotNil(t, updated.DiscountPercentage)
	assert.Equal(t, 20.0, *updated.DiscountPercentage)

	_, err = svc.UpdateTier(ctx, domain.UpdateTierRequest{
		ID:             "999999999999999999",
		Name:           "Ghost",
		DurationMonths: 1,
		Price:          10,
	})
	assert.ErrorIs(t, err, domain.ErrTierNotFound)
}

func TestDeleteTier(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	tier, err := svc.CreateTier(ctx, domain.CreateTierRequest{
		ProductID:      product.ID.String(),
		Name:           "Monthly",
		DurationMonths: 1,
		Price:          15,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTier(ctx, tier.ID.String()))

	detail, err := svc.GetByID(ctx, product.ID.String())
	require.NoError(t, err)
	assert.Empty(t, detail.Tiers)

	assert.ErrorIs(t, svc.DeleteTier(ctx, tier.ID.String()), domain.ErrTierNotFound)
}

func TestDeleteProduct(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()
	product := createProduct(t, svc, "Team Workspace")

	require.NoError(t, svc.Delete(ctx, product.ID.String()))

	_, err := svc.GetByID(ctx, product.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	createProduct(t, svc, "Team Workspace")
	other, err := svc.Create(ctx, domain.CreateProductRequest{
		Name:        "Accounting Desk",
		Description: "Bookkeeping suite for small businesses",
		Category:    "finance",
		Price:       80,
		MaxUsers:    3,
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListProductRequest{Category: "finance"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, other.ID, resp.Products[0].ID)
}
