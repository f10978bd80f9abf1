package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Rosario027/finalerp/internal/audit/audittest"
	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/invoice/numbering"
	"github.com/Rosario027/finalerp/internal/invoice/repository"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/providers/pdf"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	settingrepo "github.com/Rosario027/finalerp/internal/setting/repository"
	settingservice "github.com/Rosario027/finalerp/internal/setting/service"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

type fixture struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	settings settingdomain.Service
	audit    *audittest.Service
	svc      domain.Service
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t,
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&numbering.Sequence{},
		&settingdomain.Setting{},
		&productdomain.Product{},
	)
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, ist))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	settings := settingservice.New(settingservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Repo:  settingrepo.Provide(),
		Clock: fake,
	})
	allocator := numbering.NewAllocator(numbering.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fake,
		Settings: settings,
	})

	audit := &audittest.Service{}
	audit.On("AuditLog", mock.Anything, mock.Anything, auditdomain.TargetInvoice, mock.Anything, mock.Anything).Return(nil)

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fake,
		Repo:      repository.Provide(),
		Allocator: allocator,
		Settings:  settings,
		AuditSvc:  audit,
		PDF:       pdf.New(),
	})
	return &fixture{db: db, clock: fake, settings: settings, audit: audit, svc: svc}
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func strPtr(v string) *string {
	return &v
}

func item(rate string, qty int64, gst string) domain.LineItemInput {
	return domain.LineItemInput{
		ItemName:      "Notebook",
		Rate:          d(rate),
		Quantity:      qty,
		GSTPercentage: d(gst),
	}
}

func cashRequest(mode string, items ...domain.LineItemInput) domain.CreateRequest {
	req := domain.CreateRequest{
		InvoiceType:  "B2C",
		CustomerName: "Walk-in",
		PaymentMode:  "cash",
		Items:        items,
	}
	if mode != "" {
		req.GSTMode = &mode
	}
	return req
}

func (f *fixture) create(t *testing.T, req domain.CreateRequest) *domain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func TestCreate_ExclusiveLine(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, cashRequest("exclusive", item("100", 2, "18")))

	assert.Equal(t, "FY25-26/001", resp.InvoiceNumber)
	assert.Equal(t, "exclusive", resp.GSTMode)
	assert.Equal(t, "200.00", resp.Subtotal)
	assert.Equal(t, "36.00", resp.GSTAmount)
	assert.Equal(t, "236.00", resp.GrandTotal)
	assert.False(t, resp.IsEdited)

	require.Len(t, resp.Items, 1)
	line := resp.Items[0]
	assert.Equal(t, "200.00", line.TaxableValue)
	assert.Equal(t, "9.00", line.CGSTPercentage)
	assert.Equal(t, "18.00", line.CGSTAmount)
	assert.Equal(t, "18.00", line.SGSTAmount)
	assert.Equal(t, "236.00", line.Total)

	f.audit.AssertCalled(t, "AuditLog", mock.Anything, auditdomain.ActionInvoiceCreate, auditdomain.TargetInvoice, resp.ID, mock.Anything)
}

func TestCreate_InclusiveLine(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, cashRequest("inclusive", item("118", 1, "18")))

	assert.Equal(t, "100.00", resp.Subtotal)
	assert.Equal(t, "18.00", resp.GSTAmount)
	assert.Equal(t, "118.00", resp.GrandTotal)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "100.00", resp.Items[0].TaxableValue)
	assert.Equal(t, "118.00", resp.Items[0].Total)
}

func TestCreate_QuarterPercentKeepsHalfRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, cashRequest("exclusive", item("1000", 1, "0.25")))
	assert.Equal(t, "2.50", created.GSTAmount)
	assert.Equal(t, "1002.50", created.GrandTotal)

	loaded, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	for _, resp := range []*domain.Response{created, loaded} {
		require.Len(t, resp.Items, 1)
		line := resp.Items[0]
		assert.Equal(t, "0.25", line.GSTPercentage)
		assert.Equal(t, "0.125", line.CGSTPercentage)
		assert.Equal(t, "0.125", line.SGSTPercentage)
		assert.Equal(t, "1.25", line.CGSTAmount)
		assert.Equal(t, "1.25", line.SGSTAmount)
	}

	svc := f.svc.(*Service)
	id, err := parseID(created.ID)
	require.NoError(t, err)
	invoice, items, err := svc.load(ctx, id)
	require.NoError(t, err)
	data := svc.renderData(invoice, items)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "0.125", data.Items[0].CGSTRate)
	assert.Equal(t, "0.125", data.Items[0].SGSTRate)
}

func TestCreate_NumbersSurviveSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, cashRequest("", item("10", 1, "5")))
	assert.Equal(t, "FY25-26/001", first.InvoiceNumber)
	require.NoError(t, f.svc.Delete(ctx, first.ID))

	second := f.create(t, cashRequest("", item("10", 1, "5")))
	assert.Equal(t, "FY25-26/002", second.InvoiceNumber)
}

func TestCreate_DefaultModeFollowsPaymentSetting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.Set(ctx, settingdomain.SetRequest{Key: settingdomain.KeyOnlineGSTMode, Value: "exclusive"})
	require.NoError(t, err)

	cash := f.create(t, cashRequest("", item("118", 1, "18")))
	assert.Equal(t, "inclusive", cash.GSTMode)
	assert.Equal(t, "118.00", cash.GrandTotal)

	online := cashRequest("", item("100", 1, "18"))
	online.PaymentMode = "Online"
	resp := f.create(t, online)
	assert.Equal(t, "Online", resp.PaymentMode)
	assert.Equal(t, "exclusive", resp.GSTMode)
	assert.Equal(t, "118.00", resp.GrandTotal)
}

func TestCreate_NormalizesCustomerContact(t *testing.T) {
	f := newFixture(t)

	req := cashRequest("", item("10", 1, "5"))
	req.InvoiceType = "b2b"
	req.CustomerPhone = strPtr("98765 43210")
	req.CustomerGST = strPtr(" 27aapfu0939f1zv ")
	resp := f.create(t, req)

	assert.Equal(t, "B2B", resp.InvoiceType)
	require.NotNil(t, resp.CustomerPhone)
	assert.Equal(t, "+919876543210", *resp.CustomerPhone)
	require.NotNil(t, resp.CustomerGST)
	assert.Equal(t, "27AAPFU0939F1ZV", *resp.CustomerGST)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.CreateRequest)
		want   error
	}{
		{"invoice type", func(r *domain.CreateRequest) { r.InvoiceType = "B2X" }, domain.ErrInvalidInvoiceType},
		{"customer name", func(r *domain.CreateRequest) { r.CustomerName = "  " }, domain.ErrInvalidCustomerName},
		{"payment mode", func(r *domain.CreateRequest) { r.PaymentMode = "cheque" }, domain.ErrInvalidPaymentMode},
		{"phone", func(r *domain.CreateRequest) { r.CustomerPhone = strPtr("12") }, domain.ErrInvalidCustomerPhone},
		{"gstin", func(r *domain.CreateRequest) { r.CustomerGST = strPtr("27AAPFU") }, domain.ErrInvalidCustomerGST},
		{"gst mode", func(r *domain.CreateRequest) { r.GSTMode = strPtr("sometimes") }, tax.ErrInvalidGSTMode},
		{"no items", func(r *domain.CreateRequest) { r.Items = nil }, tax.ErrEmptyItems},
		{"zero quantity", func(r *domain.CreateRequest) { r.Items[0].Quantity = 0 }, tax.ErrInvalidQuantity},
		{"negative rate", func(r *domain.CreateRequest) { r.Items[0].Rate = d("-1") }, tax.ErrInvalidRate},
		{"rate past paise", func(r *domain.CreateRequest) { r.Items[0].Rate = d("10.005") }, tax.ErrInvalidRate},
		{"gst past two decimals", func(r *domain.CreateRequest) { r.Items[0].GSTPercentage = d("0.125") }, tax.ErrInvalidGSTPercentage},
		{"hsn", func(r *domain.CreateRequest) { r.Items[0].HSNCode = strPtr("12a") }, tax.ErrInvalidHSNCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := cashRequest("", item("10", 1, "5"))
			tt.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	preview, err := f.svc.PreviewNextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FY25-26/001", preview.InvoiceNumber)
}

func TestCreate_UnknownProductRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	good := item("10", 1, "5")
	bad := item("20", 1, "5")
	bad.ProductID = strPtr("424242")
	_, err := f.svc.Create(ctx, cashRequest("", good, bad))
	require.ErrorIs(t, err, domain.ErrInvalidProductID)
	assert.Contains(t, err.Error(), "items[1]")

	var invoices, items int64
	require.NoError(t, f.db.Model(&domain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, f.db.Model(&domain.InvoiceItem{}).Count(&items).Error)
	assert.Zero(t, invoices)
	assert.Zero(t, items)

	resp := f.create(t, cashRequest("", good))
	assert.Equal(t, "FY25-26/001", resp.InvoiceNumber)
}

func TestCreate_LinksExistingProduct(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&productdomain.Product{
		ID:            77,
		Name:          "Pen",
		Rate:          d("10"),
		GSTPercentage: d("12"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}).Error)

	line := item("10", 3, "12")
	line.ProductID = strPtr("77")
	resp := f.create(t, cashRequest("", line))

	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].ProductID)
	assert.Equal(t, "77", *resp.Items[0].ProductID)
}

func TestEdit_KeepsStoredGSTMode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, cashRequest("exclusive", item("100", 2, "18")))

	edited, err := f.svc.Edit(ctx, created.ID, domain.EditRequest{
		CustomerName: strPtr("Asha"),
		GSTMode:      strPtr("inclusive"),
		Items:        []domain.LineItemInput{item("100", 1, "18")},
	})
	require.NoError(t, err)

	assert.Equal(t, created.InvoiceNumber, edited.InvoiceNumber)
	assert.Equal(t, "exclusive", edited.GSTMode)
	assert.Equal(t, "Asha", edited.CustomerName)
	assert.Equal(t, "100.00", edited.Subtotal)
	assert.Equal(t, "118.00", edited.GrandTotal)
	assert.True(t, edited.IsEdited)
	require.Len(t, edited.Items, 1)

	f.audit.AssertCalled(t, "AuditLog", mock.Anything, auditdomain.ActionInvoiceUpdate, auditdomain.TargetInvoice, created.ID, mock.Anything)
}

func TestEdit_HeaderOnlyKeepsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, cashRequest("", item("10", 1, "5"), item("20", 2, "12")))

	edited, err := f.svc.Edit(ctx, created.ID, domain.EditRequest{PaymentMode: strPtr("online")})
	require.NoError(t, err)
	assert.Equal(t, "Online", edited.PaymentMode)
	assert.Equal(t, created.GrandTotal, edited.GrandTotal)
	assert.Len(t, edited.Items, 2)

	_, err = f.svc.Edit(ctx, created.ID, domain.EditRequest{Items: []domain.LineItemInput{}})
	assert.ErrorIs(t, err, tax.ErrEmptyItems)
}

func TestEdit_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Edit(ctx, "not-an-id", domain.EditRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceID)

	_, err = f.svc.Edit(ctx, "999", domain.EditRequest{CustomerName: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	created := f.create(t, cashRequest("", item("10", 1, "5")))
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.Edit(ctx, created.ID, domain.EditRequest{CustomerName: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrInvoiceDeleted)
}

func TestDelete_IsIdempotentAndHidesFromList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept := f.create(t, cashRequest("", item("10", 1, "5")))
	gone := f.create(t, cashRequest("", item("20", 1, "5")))

	require.NoError(t, f.svc.Delete(ctx, gone.ID))
	first, err := f.svc.Get(ctx, gone.ID)
	require.NoError(t, err)
	require.NotNil(t, first.DeletedAt)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.Delete(ctx, gone.ID))
	again, err := f.svc.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, first.DeletedAt.Equal(*again.DeletedAt))

	live, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, kept.ID, live[0].ID)
	assert.Empty(t, live[0].Items)

	all, err := f.svc.List(ctx, domain.ListRequest{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.svc.Delete(ctx, "12345"), domain.ErrInvoiceNotFound)
	f.audit.AssertNumberOfCalls(t, "AuditLog", 3)
}

func TestList_DateRangeUsesBusinessDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	morning := f.create(t, cashRequest("", item("10", 1, "5")))
	// 00:30 IST on the 16th is still the 15th in UTC
	f.clock.Set(time.Date(2025, 6, 16, 0, 30, 0, 0, ist))
	midnight := f.create(t, cashRequest("", item("10", 1, "5")))

	day, err := f.svc.List(ctx, domain.ListRequest{StartDate: "2025-06-15", EndDate: "2025-06-15"})
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, morning.ID, day[0].ID)

	both, err := f.svc.List(ctx, domain.ListRequest{StartDate: "2025-06-15", EndDate: "2025-06-16"})
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, midnight.ID, both[0].ID)

	_, err = f.svc.List(ctx, domain.ListRequest{StartDate: "2025-06-16", EndDate: "2025-06-15"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	_, err = f.svc.List(ctx, domain.ListRequest{StartDate: "15/06/2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestPreviewNextNumber_DoesNotReserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	preview, err := f.svc.PreviewNextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FY25-26/001", preview.InvoiceNumber)
	assert.Equal(t, "2025-26", preview.FiscalYear)

	resp := f.create(t, cashRequest("", item("10", 1, "5")))
	assert.Equal(t, preview.InvoiceNumber, resp.InvoiceNumber)
}

func TestPrint_RendersPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, cashRequest("exclusive", item("100", 2, "18")))

	doc, err := f.svc.Print(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "fy25-26-001.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))

	receipt, err := f.svc.Receipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "fy25-26-001-receipt.pdf", receipt.Filename)
	assert.True(t, bytes.HasPrefix(receipt.Body, []byte("%PDF")))

	_, err = f.svc.Print(ctx, "31337")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
