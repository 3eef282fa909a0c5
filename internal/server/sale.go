package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatwise/seatwise/internal/export"
	saledomain "github.com/seatwise/seatwise/internal/sale/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
)

type createSaleRequest struct {
	PurchaseID    string     `json:"purchase_id"`
	CustomerID    string     `json:"customer_id"`
	SalePrice     float64    `json:"sale_price"`
	SaleDate      *time.Time `json:"sale_date"`
	AccessDetails string     `json:"access_details"`
}

type updateSaleRequest struct {
	SalePrice     float64 `json:"sale_price"`
	AccessDetails string  `json:"access_details"`
	Status        string  `json:"status"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateSaleRequest{
		PurchaseID:    strings.TrimSpace(req.PurchaseID),
		CustomerID:    strings.TrimSpace(req.CustomerID),
		SalePrice:     req.SalePrice,
		SaleDate:      req.SaleDate,
		AccessDetails: strings.TrimSpace(req.AccessDetails),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		pagination.Pagination
		PurchaseID string `form:"purchase_id"`
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		PurchaseID: strings.TrimSpace(query.PurchaseID),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.saleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSale(c *gin.Context) {
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.Update(c.Request.Context(), saledomain.UpdateSaleRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		SalePrice:     req.SalePrice,
		AccessDetails: strings.TrimSpace(req.AccessDetails),
		Status:        strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ExportSales streams all sales as a CSV download, paging through the service
// in cursor order.
func (s *Server) ExportSales(c *gin.Context) {
	const exportPageSize = 250

	header := []string{"id", "purchase_id", "customer_id", "sale_price", "sale_date", "status"}
	rows := make([][]string, 0, exportPageSize)

	pageToken := ""
	for {
		resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
			PageToken: pageToken,
			PageSize:  exportPageSize,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		for _, sale := range resp.Sales {
			rows = append(rows, []string{
				sale.ID.String(),
				sale.PurchaseID.String(),
				sale.CustomerID.String(),
				formatAmount(sale.SalePrice),
				sale.SaleDate.Format(dateOnlyLayout),
				string(sale.Status),
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.Header("Content-Disposition", `attachment; filename="sales.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := export.WriteCSV(c.Writer, header, rows); err != nil {
		AbortWithError(c, err)
		return
	}
}

func (s *Server) DeleteSale(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.saleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
