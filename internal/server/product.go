package server

import (
	"net/http"
	"strings"

	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name            string `form:"name"`
		Category        string `form:"category"`
		IncludeArchived string `form:"includeArchived"`
		SortBy          string `form:"sort_by"`
		OrderBy         string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	includeArchived, err := parseOptionalBool(query.IncludeArchived)
	if err != nil {
		AbortWithError(c, newValidationError("includeArchived", "invalid_include_archived", "invalid includeArchived"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Name:            strings.TrimSpace(query.Name),
		Category:        strings.TrimSpace(query.Category),
		IncludeArchived: includeArchived != nil && *includeArchived,
		SortBy:          strings.TrimSpace(query.SortBy),
		OrderBy:         strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeleteProduct archives by default; ?hard=true removes the row when no invoice uses it.
func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	hard, err := parseOptionalBool(c.Query("hard"))
	if err != nil {
		AbortWithError(c, newValidationError("hard", "invalid_hard", "invalid hard"))
		return
	}

	if hard != nil && *hard {
		if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	resp, err := s.productSvc.Archive(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
