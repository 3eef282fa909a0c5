package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seatwise/seatwise/internal/export"
)

func (s *Server) GetProfitLossReport(c *gin.Context) {
	report, err := s.profitLossSvc.Report(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// ExportProfitLossReport downloads the monthly breakdown as CSV.
func (s *Server) ExportProfitLossReport(c *gin.Context) {
	report, err := s.profitLossSvc.Report(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	header := []string{"month", "revenue", "cost", "profit", "count"}
	rows := make([][]string, 0, len(report.Monthly))
	for _, entry := range report.Monthly {
		rows = append(rows, []string{
			entry.Month,
			formatAmount(entry.Revenue),
			formatAmount(entry.Cost),
			formatAmount(entry.Profit),
			strconv.Itoa(entry.Count),
		})
	}

	c.Header("Content-Disposition", `attachment; filename="profit-loss.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := export.WriteCSV(c.Writer, header, rows); err != nil {
		AbortWithError(c, err)
		return
	}
}
