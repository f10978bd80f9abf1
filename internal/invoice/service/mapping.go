package service

import (
	"context"
	"strings"

	"github.com/Rosario027/finalerp/internal/invoice/domain"
	obsctx "github.com/Rosario027/finalerp/internal/observability/context"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/bwmarrin/snowflake"
)

func toResponse(invoice *domain.Invoice, items []domain.InvoiceItem) domain.Response {
	resp := domain.Response{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceType:   string(invoice.InvoiceType),
		CustomerName:  invoice.CustomerName,
		CustomerPhone: invoice.CustomerPhone,
		CustomerGST:   invoice.CustomerGST,
		PaymentMode:   string(invoice.PaymentMode),
		GSTMode:       string(invoice.GSTMode),
		Subtotal:      money(invoice.Subtotal),
		GSTAmount:     money(invoice.GSTAmount),
		GrandTotal:    money(invoice.GrandTotal),
		IsEdited:      invoice.IsEdited,
		DeletedAt:     invoice.DeletedAt,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
	if items == nil {
		return resp
	}

	resp.Items = make([]domain.ItemResponse, 0, len(items))
	for _, item := range items {
		var productID *string
		if item.ProductID != nil {
			id := item.ProductID.String()
			productID = &id
		}
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:             item.ID.String(),
			ProductID:      productID,
			ItemName:       item.ItemName,
			HSNCode:        item.HSNCode,
			Rate:           money(item.Rate),
			Quantity:       item.Quantity,
			GSTPercentage:  tax.FormatPercent(item.GSTPercentage),
			CGSTPercentage: tax.FormatPercent(item.CGSTPercentage),
			CGSTAmount:     money(item.CGSTAmount),
			SGSTPercentage: tax.FormatPercent(item.SGSTPercentage),
			SGSTAmount:     money(item.SGSTAmount),
			TaxableValue:   money(item.TaxableValue),
			Total:          money(item.Total),
		})
	}
	return resp
}

func actorID(ctx context.Context) *snowflake.ID {
	userID, _ := obsctx.ActorFromContext(ctx)
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
