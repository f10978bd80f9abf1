package server

import (
	"net/http"

	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/gin-gonic/gin"
)

type setSettingRequest struct {
	Value *string `json:"value"`
}

func (s *Server) ListSettings(c *gin.Context) {
	resp, err := s.settingSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetSetting answers with a null value for a key that was never written.
func (s *Server) GetSetting(c *gin.Context) {
	resp, err := s.settingSvc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetSetting(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		AbortWithError(c, newValidationError("value", "invalid_value", "value is required"))
		return
	}

	resp, err := s.settingSvc.Set(c.Request.Context(), settingdomain.SetRequest{
		Key:   c.Param("key"),
		Value: *req.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
