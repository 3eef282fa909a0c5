package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/seatwise/seatwise/internal/customer/domain"
	"github.com/seatwise/seatwise/internal/export/pdf"
	invoicedomain "github.com/seatwise/seatwise/internal/invoice/domain"
	"github.com/seatwise/seatwise/pkg/db/pagination"
	"go.uber.org/zap"
)

type createInvoiceItemRequest struct {
	SubscriptionID string  `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	Description    string  `json:"description"`
}

type createInvoiceRequest struct {
	CustomerID     string                     `json:"customer_id"`
	SubscriptionID string                     `json:"subscription_id"`
	Amount         float64                    `json:"amount"`
	Items          []createInvoiceItemRequest `json:"items"`
	IssueDate      *time.Time                 `json:"issue_date"`
	DueDate        *time.Time                 `json:"due_date"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]invoicedomain.CreateInvoiceItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.CreateInvoiceItemRequest{
			SubscriptionID: strings.TrimSpace(item.SubscriptionID),
			Amount:         item.Amount,
			Description:    strings.TrimSpace(item.Description),
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		SubscriptionID: strings.TrimSpace(req.SubscriptionID),
		Amount:         req.Amount,
		Items:          items,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
		IssuedFrom string `form:"issued_from"`
		IssuedTo   string `form:"issued_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issuedFrom, err := parseOptionalTime(query.IssuedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("issued_from", "invalid_issued_from", "invalid issued_from"))
		return
	}

	issuedTo, err := parseOptionalTime(query.IssuedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("issued_to", "invalid_issued_to", "invalid issued_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
		IssuedFrom: issuedFrom,
		IssuedTo:   issuedTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PayInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	detail, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cust, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: detail.CustomerID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfRenderer.RenderInvoice(c.Request.Context(), buildInvoicePDFData(s.cfg.AppName, detail, cust))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, detail.ID.String()))
	c.Header("Content-Type", "application/pdf")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		s.log.Warn("invoice pdf write interrupted", zap.Error(err))
	}
}

func buildInvoicePDFData(appName string, detail invoicedomain.InvoiceDetail, cust customerdomain.Customer) pdf.InvoiceData {
	data := pdf.InvoiceData{
		AppName:       appName,
		InvoiceNumber: detail.ID.String(),
		Status:        string(detail.Status),
		IssueDate:     detail.IssueDate.Format(dateOnlyLayout),
		DueDate:       detail.DueDate.Format(dateOnlyLayout),
		BillToName:    cust.Name,
		BillToEmail:   cust.Email,
		BillToPhone:   cust.PhoneValue(),
		Total:         formatAmount(detail.TotalAmount),
	}
	if detail.PaidDate != nil {
		data.PaidDate = detail.PaidDate.Format(dateOnlyLayout)
	}

	for _, item := range detail.Items {
		desc := item.Description
		if desc == "" {
			desc = fmt.Sprintf("Subscription %s", item.SubscriptionID.String())
		}
		data.Items = append(data.Items, pdf.InvoiceLine{
			Description: desc,
			Amount:      formatAmount(item.Amount),
		})
	}
	if len(data.Items) == 0 {
		desc := "Subscription"
		if detail.SubscriptionID != nil {
			desc = fmt.Sprintf("Subscription %s", detail.SubscriptionID.String())
		}
		data.Items = append(data.Items, pdf.InvoiceLine{
			Description: desc,
			Amount:      formatAmount(detail.TotalAmount),
		})
	}

	return data
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
