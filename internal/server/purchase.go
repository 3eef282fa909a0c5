package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/seatwise/seatwise/internal/purchase/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type createPurchaseRequest struct {
	ProductID        string     `json:"product_id"`
	ServiceName      string     `json:"service_name"`
	AccountDetails   string     `json:"account_details"`
	PurchasePrice    float64    `json:"purchase_price"`
	SalePricePerUser float64    `json:"sale_price_per_user"`
	MaxUsers         int        `json:"max_users"`
	PurchaseDate     *time.Time `json:"purchase_date"`
	Notes            string     `json:"notes"`
}

type updatePurchaseRequest struct {
	ServiceName      string  `json:"service_name"`
	AccountDetails   string  `json:"account_details"`
	PurchasePrice    float64 `json:"purchase_price"`
	SalePricePerUser float64 `json:"sale_price_per_user"`
	MaxUsers         int     `json:"max_users"`
	Status           string  `json:"status"`
	Notes            string  `json:"notes"`
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Create(c.Request.Context(), purchasedomain.CreatePurchaseRequest{
		ProductID:        strings.TrimSpace(req.ProductID),
		ServiceName:      strings.TrimSpace(req.ServiceName),
		AccountDetails:   strings.TrimSpace(req.AccountDetails),
		PurchasePrice:    req.PurchasePrice,
		SalePricePerUser: req.SalePricePerUser,
		MaxUsers:         req.MaxUsers,
		PurchaseDate:     req.PurchaseDate,
		Notes:            strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ServiceName string `form:"service_name"`
		Status      string `form:"status"`
		ProductID   string `form:"product_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.List(c.Request.Context(), purchasedomain.ListPurchaseRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		ServiceName: strings.TrimSpace(query.ServiceName),
		Status:      strings.TrimSpace(query.Status),
		ProductID:   strings.TrimSpace(query.ProductID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPurchaseByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.purchaseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePurchase(c *gin.Context) {
	var req updatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchaseSvc.Update(c.Request.Context(), purchasedomain.UpdatePurchaseRequest{
		ID:               strings.TrimSpace(c.Param("id")),
		ServiceName:      strings.TrimSpace(req.ServiceName),
		AccountDetails:   strings.TrimSpace(req.AccountDetails),
		PurchasePrice:    req.PurchasePrice,
		SalePricePerUser: req.SalePricePerUser,
		MaxUsers:         req.MaxUsers,
		Status:           strings.TrimSpace(req.Status),
		Notes:            strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePurchase(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.purchaseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
