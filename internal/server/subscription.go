package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/seatwise/seatwise/internal/subscription/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type createSubscriptionRequest struct {
	CustomerID         string     `json:"customer_id"`
	PricingTierID      string     `json:"pricing_tier_id"`
	PurchaseID         string     `json:"purchase_id"`
	StartDate          *time.Time `json:"start_date"`
	DiscountPercentage float64    `json:"discount_percentage"`
	CustomPrice        *float64   `json:"custom_price"`
}

type quoteSubscriptionRequest struct {
	PricingTierID      string   `json:"pricing_tier_id"`
	PurchaseID         string   `json:"purchase_id"`
	DiscountPercentage float64  `json:"discount_percentage"`
	CustomPrice        *float64 `json:"custom_price"`
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Create(c.Request.Context(), subscriptiondomain.CreateSubscriptionRequest{
		CustomerID:         strings.TrimSpace(req.CustomerID),
		PricingTierID:      strings.TrimSpace(req.PricingTierID),
		PurchaseID:         strings.TrimSpace(req.PurchaseID),
		StartDate:          req.StartDate,
		DiscountPercentage: req.DiscountPercentage,
		CustomPrice:        req.CustomPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.List(c.Request.Context(), subscriptiondomain.ListSubscriptionRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.subscriptionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSubscription(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.subscriptionSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenewSubscription(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.subscriptionSvc.Renew(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSubscription(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.subscriptionSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) QuoteSubscription(c *gin.Context) {
	var req quoteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.Quote(c.Request.Context(), subscriptiondomain.QuoteRequest{
		PricingTierID:      strings.TrimSpace(req.PricingTierID),
		PurchaseID:         strings.TrimSpace(req.PurchaseID),
		DiscountPercentage: req.DiscountPercentage,
		CustomPrice:        req.CustomPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListExpiringSubscriptions(c *gin.Context) {
	windowDays, err := parseOptionalInt(c.Query("window_days"))
	if err != nil {
		AbortWithError(c, newValidationError("window_days", "invalid_window_days", "invalid window_days"))
		return
	}

	window := 0
	if windowDays != nil {
		window = *windowDays
	}

	resp, err := s.subscriptionSvc.ListExpiring(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"subscriptions": resp}})
}
