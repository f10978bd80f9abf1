package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

const defaultPhoneRegion = "IN"

var customerGSTPattern = regexp.MustCompile(`^[0-9A-Z]{15}$`)

// lineDraft is a validated line item before tax is applied.
type lineDraft struct {
	productID *snowflake.ID
	itemName  string
	hsnCode   *string
	input     tax.LineInput
}

type createDraft struct {
	invoiceType   domain.InvoiceType
	customerName  string
	customerPhone *string
	customerGST   *string
	paymentMode   domain.PaymentMode
	gstMode       *tax.GSTMode
	lines         []lineDraft
}

func validateCreate(req domain.CreateRequest) (*createDraft, error) {
	invoiceType, err := parseInvoiceType(req.InvoiceType)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.ErrInvalidCustomerName
	}
	phone, err := normalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	gst, err := normalizeCustomerGST(req.CustomerGST)
	if err != nil {
		return nil, err
	}
	paymentMode, err := parsePaymentMode(req.PaymentMode)
	if err != nil {
		return nil, err
	}

	var gstMode *tax.GSTMode
	if req.GSTMode != nil && strings.TrimSpace(*req.GSTMode) != "" {
		mode, err := tax.ParseGSTMode(*req.GSTMode)
		if err != nil {
			return nil, err
		}
		gstMode = &mode
	}

	lines, err := validateItems(req.Items)
	if err != nil {
		return nil, err
	}

	return &createDraft{
		invoiceType:   invoiceType,
		customerName:  name,
		customerPhone: phone,
		customerGST:   gst,
		paymentMode:   paymentMode,
		gstMode:       gstMode,
		lines:         lines,
	}, nil
}

func validateItems(items []domain.LineItemInput) ([]lineDraft, error) {
	if len(items) == 0 {
		return nil, tax.ErrEmptyItems
	}

	lines := make([]lineDraft, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.ItemName)
		if name == "" {
			return nil, fmt.Errorf("items[%d]: %w", i, domain.ErrInvalidItemName)
		}
		hsn, err := tax.NormalizeHSNCode(item.HSNCode)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		var productID *snowflake.ID
		if item.ProductID != nil && strings.TrimSpace(*item.ProductID) != "" {
			id, err := snowflake.ParseString(strings.TrimSpace(*item.ProductID))
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("items[%d]: %w", i, domain.ErrInvalidProductID)
			}
			productID = &id
		}

		input := tax.LineInput{
			Rate:          item.Rate,
			Quantity:      item.Quantity,
			GSTPercentage: item.GSTPercentage,
		}
		if err := tax.Validate(input); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}

		lines = append(lines, lineDraft{
			productID: productID,
			itemName:  name,
			hsnCode:   hsn,
			input:     input,
		})
	}
	return lines, nil
}

func lineInputs(lines []lineDraft) []tax.LineInput {
	inputs := make([]tax.LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, line.input)
	}
	return inputs
}

func productIDs(lines []lineDraft) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(lines))
	ids := make([]snowflake.ID, 0, len(lines))
	for _, line := range lines {
		if line.productID == nil {
			continue
		}
		if _, ok := seen[*line.productID]; ok {
			continue
		}
		seen[*line.productID] = struct{}{}
		ids = append(ids, *line.productID)
	}
	return ids
}

func parseInvoiceType(raw string) (domain.InvoiceType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(domain.InvoiceTypeB2C):
		return domain.InvoiceTypeB2C, nil
	case string(domain.InvoiceTypeB2B):
		return domain.InvoiceTypeB2B, nil
	default:
		return "", domain.ErrInvalidInvoiceType
	}
}

func parsePaymentMode(raw string) (domain.PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return domain.PaymentModeCash, nil
	case "online":
		return domain.PaymentModeOnline, nil
	default:
		return "", domain.ErrInvalidPaymentMode
	}
}

// normalizePhone returns the number in E.164, reading national numbers as Indian.
func normalizePhone(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}

	num, err := libphonenumber.Parse(value, defaultPhoneRegion)
	if err != nil {
		return nil, domain.ErrInvalidCustomerPhone
	}
	if !libphonenumber.IsValidNumber(num) {
		return nil, domain.ErrInvalidCustomerPhone
	}
	formatted := libphonenumber.Format(num, libphonenumber.E164)
	return &formatted, nil
}

func normalizeCustomerGST(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.ToUpper(strings.TrimSpace(*raw))
	if value == "" {
		return nil, nil
	}
	if !customerGSTPattern.MatchString(value) {
		return nil, domain.ErrInvalidCustomerGST
	}
	return &value, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(tax.MoneyScale)
}
