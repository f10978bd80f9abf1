package server

import (
	"net/http"
	"strings"

	reportdomain "github.com/Rosario027/finalerp/internal/report/domain"
	"github.com/gin-gonic/gin"
)

type rangeQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func bindRange(c *gin.Context) (reportdomain.RangeRequest, bool) {
	var query rangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return reportdomain.RangeRequest{}, false
	}
	return reportdomain.RangeRequest{
		StartDate: strings.TrimSpace(query.StartDate),
		EndDate:   strings.TrimSpace(query.EndDate),
	}, true
}

func (s *Server) GetStats(c *gin.Context) {
	resp, err := s.reportSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSalesReport(c *gin.Context) {
	req, ok := bindRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.Sales(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportSalesReport(c *gin.Context) {
	req, ok := bindRange(c)
	if !ok {
		return
	}

	doc, err := s.reportSvc.ExportSales(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeDocument(c, "attachment", doc.Filename, doc.ContentType, doc.Body)
}

func (s *Server) GetStockReport(c *gin.Context) {
	req, ok := bindRange(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.Stock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
