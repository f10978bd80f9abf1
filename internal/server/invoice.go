package server

import (
	"net/http"
	"strings"

	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) NextInvoiceNumber(c *gin.Context) {
	resp, err := s.invoiceSvc.PreviewNextNumber(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		StartDate      string `form:"startDate"`
		EndDate        string `form:"endDate"`
		IncludeDeleted string `form:"includeDeleted"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	includeDeleted, err := parseOptionalBool(query.IncludeDeleted)
	if err != nil {
		AbortWithError(c, newValidationError("includeDeleted", "invalid_include_deleted", "invalid includeDeleted"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		StartDate:      strings.TrimSpace(query.StartDate),
		EndDate:        strings.TrimSpace(query.EndDate),
		IncludeDeleted: includeDeleted != nil && *includeDeleted,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) EditInvoice(c *gin.Context) {
	var req invoicedomain.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Edit(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) PrintInvoice(c *gin.Context) {
	doc, err := s.invoiceSvc.Print(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeDocument(c, "inline", doc.Filename, doc.ContentType, doc.Body)
}

func (s *Server) PrintReceipt(c *gin.Context) {
	doc, err := s.invoiceSvc.Receipt(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writeDocument(c, "inline", doc.Filename, doc.ContentType, doc.Body)
}

func writeDocument(c *gin.Context, disposition, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
