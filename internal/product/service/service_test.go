package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rosario027/finalerp/internal/audit/audittest"
	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/product/repository"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t, &domain.Product{}, &invoicedomain.Invoice{}, &invoicedomain.InvoiceItem{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc.(*Service), gdb
}

func strPtr(s string) *string { return &s }

func createRice(t *testing.T, svc *Service) *domain.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:          "  Rice 5kg ",
		Category:      strPtr("Grocery"),
		HSNCode:       strPtr("1006"),
		Rate:          decimal.RequireFromString("250.5"),
		GSTPercentage: decimal.NewFromInt(5),
		Quantity:      40,
	})
	require.NoError(t, err)
	return resp
}

func TestCreate_NormalizesFields(t *testing.T) {
	svc, _ := newTestService(t)

	resp := createRice(t, svc)
	assert.Equal(t, "Rice 5kg", resp.Name)
	assert.Equal(t, "250.50", resp.Rate)
	assert.Equal(t, "5.00", resp.GSTPercentage)
	assert.Equal(t, "1006", *resp.HSNCode)
	assert.Nil(t, resp.Comments)
	assert.Nil(t, resp.DeletedAt)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.CreateRequest
		err  error
	}{
		{"missing name", domain.CreateRequest{Name: " ", Rate: decimal.NewFromInt(1)}, domain.ErrInvalidName},
		{"negative rate", domain.CreateRequest{Name: "x", Rate: decimal.NewFromInt(-1)}, tax.ErrInvalidRate},
		{"gst over 100", domain.CreateRequest{Name: "x", Rate: decimal.NewFromInt(1), GSTPercentage: decimal.NewFromInt(101)}, tax.ErrInvalidGSTPercentage},
		{"negative stock", domain.CreateRequest{Name: "x", Rate: decimal.NewFromInt(1), Quantity: -1}, domain.ErrInvalidQuantity},
		{"bad hsn", domain.CreateRequest{Name: "x", Rate: decimal.NewFromInt(1), HSNCode: strPtr("12")}, tax.ErrInvalidHSNCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _ := newTestService(t)
	created := createRice(t, svc)

	newRate := decimal.NewFromInt(260)
	qty := int64(12)
	resp, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:       created.ID,
		Rate:     &newRate,
		Quantity: &qty,
		Category: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "260.00", resp.Rate)
	assert.Equal(t, int64(12), resp.Quantity)
	assert.Nil(t, resp.Category)
	assert.Equal(t, "Rice 5kg", resp.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), domain.UpdateRequest{ID: "12345"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestArchive_HidesFromDefaultList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rice := createRice(t, svc)
	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Dal 1kg", Rate: decimal.NewFromInt(120), GSTPercentage: decimal.NewFromInt(5)})
	require.NoError(t, err)

	archived, err := svc.Archive(ctx, rice.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.DeletedAt)

	live, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "Dal 1kg", live[0].Name)

	all, err := svc.List(ctx, domain.ListRequest{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := svc.Get(ctx, rice.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.DeletedAt)
}

func TestList_SearchByNameAndCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createRice(t, svc)
	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Brown Rice", Category: strPtr("Organic"), Rate: decimal.NewFromInt(300)})
	require.NoError(t, err)

	byName, err := svc.List(ctx, domain.ListRequest{Name: "rice"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byCategory, err := svc.List(ctx, domain.ListRequest{Category: "Organic"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Brown Rice", byCategory[0].Name)
}

// referenceProduct stores an invoice with one line pointing at productID.
func referenceProduct(t *testing.T, gdb *gorm.DB, productID snowflake.ID) error {
	t.Helper()
	now := time.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:            1,
		InvoiceNumber: "FY25-26/001",
		InvoiceType:   invoicedomain.InvoiceTypeB2C,
		CustomerName:  "Walk-in",
		PaymentMode:   invoicedomain.PaymentModeCash,
		GSTMode:       tax.GSTModeInclusive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, gdb.Omit("Items").Create(&invoice).Error)
	return gdb.Omit("Product").Create(&invoicedomain.InvoiceItem{
		ID:        2,
		InvoiceID: 1,
		ProductID: &productID,
		ItemName:  "Rice 5kg",
		Quantity:  1,
		CreatedAt: now,
	}).Error
}

func TestDelete_RefusedWhileReferenced(t *testing.T) {
	svc, gdb := newTestService(t)
	ctx := context.Background()

	rice := createRice(t, svc)
	productID, err := snowflake.ParseString(rice.ID)
	require.NoError(t, err)
	require.NoError(t, referenceProduct(t, gdb, productID))

	err = svc.Delete(ctx, rice.ID)
	assert.ErrorIs(t, err, domain.ErrProductInUse)

	_, err = svc.Get(ctx, rice.ID)
	assert.NoError(t, err)
}

func TestProductReference_EnforcedByDatabase(t *testing.T) {
	t.Run("delete of referenced product is restricted", func(t *testing.T) {
		svc, gdb := newTestService(t)
		rice := createRice(t, svc)
		productID, err := snowflake.ParseString(rice.ID)
		require.NoError(t, err)
		require.NoError(t, referenceProduct(t, gdb, productID))

		err = gdb.Delete(&domain.Product{}, int64(productID)).Error
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyErr(err), "unexpected error: %v", err)

		var count int64
		require.NoError(t, gdb.Model(&domain.Product{}).Where("id = ?", int64(productID)).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("line pointing at a missing product is rejected", func(t *testing.T) {
		_, gdb := newTestService(t)
		err := referenceProduct(t, gdb, snowflake.ID(424242))
		require.Error(t, err)
		assert.True(t, db.IsForeignKeyErr(err), "unexpected error: %v", err)
	})
}

func TestDelete_UnreferencedIsRemoved(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rice := createRice(t, svc)
	require.NoError(t, svc.Delete(ctx, rice.ID))

	_, err := svc.Get(ctx, rice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, rice.ID), domain.ErrNotFound)
}

func TestCreate_EmitsAudit(t *testing.T) {
	svc, _ := newTestService(t)
	audit := &audittest.Service{}
	audit.On("AuditLog", mock.Anything, "product.create", "product", mock.Anything, mock.Anything).Return(nil).Once()
	svc.auditSvc = audit

	createRice(t, svc)
	audit.AssertExpectations(t)
}
