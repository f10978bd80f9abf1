package server

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	authdomain "github.com/Rosario027/finalerp/internal/auth/domain"
	"github.com/Rosario027/finalerp/internal/authorization"
	expensedomain "github.com/Rosario027/finalerp/internal/expense/domain"
	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	reportdomain "github.com/Rosario027/finalerp/internal/report/domain"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// validationErrors are the domain sentinels reported as 400 with their code.
var validationErrors = []error{
	ErrInvalidRequest,

	tax.ErrInvalidRate,
	tax.ErrInvalidQuantity,
	tax.ErrInvalidGSTPercentage,
	tax.ErrInvalidGSTMode,
	tax.ErrEmptyItems,
	tax.ErrInvalidHSNCode,

	invoicedomain.ErrInvalidInvoiceID,
	invoicedomain.ErrInvalidInvoiceType,
	invoicedomain.ErrInvalidCustomerName,
	invoicedomain.ErrInvalidCustomerPhone,
	invoicedomain.ErrInvalidCustomerGST,
	invoicedomain.ErrInvalidPaymentMode,
	invoicedomain.ErrInvalidItemName,
	invoicedomain.ErrInvalidProductID,
	invoicedomain.ErrInvalidDateRange,

	productdomain.ErrInvalidName,
	productdomain.ErrInvalidQuantity,
	productdomain.ErrInvalidID,

	settingdomain.ErrInvalidKey,
	settingdomain.ErrInvalidValue,
	settingdomain.ErrInvalidSeriesStart,
	settingdomain.ErrInvalidGSTMode,

	expensedomain.ErrInvalidID,
	expensedomain.ErrInvalidDescription,
	expensedomain.ErrInvalidAmount,
	expensedomain.ErrInvalidDateRange,

	reportdomain.ErrInvalidDateRange,

	auditdomain.ErrInvalidTimeRange,

	authdomain.ErrInvalidUsername,
	authdomain.ErrInvalidPassword,
	authdomain.ErrInvalidRole,
	authdomain.ErrInvalidUserID,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if sentinel := validationSentinel(err); sentinel != nil {
		code := sentinel.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err, code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many login attempts",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, invoicedomain.ErrInvoiceNumberBusy):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationSentinel(err error) error {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, authdomain.ErrCannotDeleteSelf),
		errors.Is(err, authdomain.ErrLastAdmin),
		errors.Is(err, productdomain.ErrProductInUse),
		errors.Is(err, invoicedomain.ErrInvoiceDeleted):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	for _, sentinel := range []error{
		authdomain.ErrUserExists,
		authdomain.ErrCannotDeleteSelf,
		authdomain.ErrLastAdmin,
		productdomain.ErrProductInUse,
		invoicedomain.ErrInvoiceDeleted,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, expensedomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// validationErrorField turns "items[1]: invalid_rate" into "items[1].rate".
func validationErrorField(err error, code string) string {
	if code == "invalid_request" {
		return "request"
	}
	field := strings.TrimPrefix(code, "invalid_")
	msg := err.Error()
	if msg == code {
		return field
	}
	if idx := strings.Index(msg, ": "); idx > 0 {
		return msg[:idx] + "." + field
	}
	return field
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_items":
		return "at least one item is required"
	case "invalid_date_range":
		return "start date must not be after end date"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog returns the error type and code recorded by the request logger.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	} else if status == http.StatusConflict {
		code = payload.Message
	}
	return payload.Type, code
}
