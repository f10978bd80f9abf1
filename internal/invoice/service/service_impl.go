package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/config"
	"github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/invoice/numbering"
	"github.com/Rosario027/finalerp/internal/observability/metrics"
	"github.com/Rosario027/finalerp/internal/providers/pdf"
	settingdomain "github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxCreateAttempts bounds the allocate-and-insert loop on number collisions.
const maxCreateAttempts = 3

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Allocator *numbering.Allocator
	Settings  settingdomain.Service
	AuditSvc  auditdomain.Service           `optional:"true"`
	Metrics   *metrics.Metrics              `optional:"true"`
	PDF       pdf.Provider                  `optional:"true"`
	Business  *config.BusinessProfileHolder `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo      domain.Repository
	allocator *numbering.Allocator
	settings  settingdomain.Service
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
	pdf       pdf.Provider
	business  *config.BusinessProfileHolder
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		repo:      p.Repo,
		allocator: p.Allocator,
		settings:  p.Settings,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
		pdf:       p.PDF,
		business:  p.Business,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	draft, err := validateCreate(req)
	if err != nil {
		return nil, err
	}

	var created *domain.Invoice
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		created, err = s.createOnce(ctx, draft)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		s.log.Warn("invoice number collision, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		s.metrics.RecordNumberRetry(ctx, "duplicate_number")
	}
	if err != nil {
		s.log.Error("invoice number allocation exhausted", zap.Int("attempts", maxCreateAttempts))
		return nil, domain.ErrInvoiceNumberBusy
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", created.ID.String()),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("gst_mode", string(created.GSTMode)),
		zap.String("grand_total", money(created.GrandTotal)),
	)
	s.metrics.RecordInvoiceCreated(ctx, string(created.InvoiceType), string(created.PaymentMode), created.GrandTotal.InexactFloat64())
	s.emitAudit(ctx, auditdomain.ActionInvoiceCreate, created, nil)

	resp := toResponse(created, created.Items)
	return &resp, nil
}

// createOnce allocates a number and persists header and items in one transaction.
func (s *Service) createOnce(ctx context.Context, draft *createDraft) (*domain.Invoice, error) {
	unlock, err := s.allocator.Lock(ctx)
	if err != nil {
		if errors.Is(err, numbering.ErrNumberUnavailable) {
			return nil, domain.ErrInvoiceNumberBusy
		}
		return nil, err
	}
	defer unlock()

	var invoice *domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := s.settings.NumberingConfig(ctx, tx)
		if err != nil {
			return err
		}

		mode := defaultGSTMode(cfg, draft.paymentMode)
		if draft.gstMode != nil {
			mode = *draft.gstMode
		}

		lines, totals, err := tax.ComputeInvoice(lineInputs(draft.lines), mode)
		if err != nil {
			return err
		}
		if err := s.ensureProducts(ctx, tx, draft.lines); err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, tx, cfg)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		invoice = &domain.Invoice{
			ID:            s.genID.Generate(),
			InvoiceNumber: number.Value,
			InvoiceType:   draft.invoiceType,
			CustomerName:  draft.customerName,
			CustomerPhone: draft.customerPhone,
			CustomerGST:   draft.customerGST,
			PaymentMode:   draft.paymentMode,
			GSTMode:       mode,
			Subtotal:      totals.Subtotal,
			GSTAmount:     totals.GSTAmount,
			GrandTotal:    totals.GrandTotal,
			CreatedBy:     actorID(ctx),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Insert(ctx, tx, invoice); err != nil {
			return err
		}

		invoice.Items = s.buildItems(invoice.ID, draft.lines, lines, now)
		return s.repo.InsertItems(ctx, tx, invoice.Items)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Edit(ctx context.Context, id string, req domain.EditRequest) (*domain.Response, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if req.GSTMode != nil {
		s.log.Debug("ignoring gst mode on invoice edit", zap.String("invoice_id", invoiceID.String()))
	}

	fields, err := editFields(req)
	if err != nil {
		return nil, err
	}
	var drafts []lineDraft
	if req.Items != nil {
		drafts, err = validateItems(req.Items)
		if err != nil {
			return nil, err
		}
	}

	var changed []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrInvoiceNotFound
		}
		if invoice.IsDeleted() {
			return domain.ErrInvoiceDeleted
		}

		now := s.clock.Now().UTC()
		if drafts != nil {
			lines, totals, err := tax.ComputeInvoice(lineInputs(drafts), invoice.GSTMode)
			if err != nil {
				return err
			}
			if err := s.ensureProducts(ctx, tx, drafts); err != nil {
				return err
			}
			if err := s.repo.ReplaceItems(ctx, tx, invoice.ID, s.buildItems(invoice.ID, drafts, lines, now)); err != nil {
				return err
			}
			fields["subtotal"] = totals.Subtotal
			fields["gst_amount"] = totals.GSTAmount
			fields["grand_total"] = totals.GrandTotal
		}

		for key := range fields {
			changed = append(changed, key)
		}
		sort.Strings(changed)
		fields["is_edited"] = true
		fields["updated_at"] = now
		return s.repo.UpdateHeader(ctx, tx, invoice.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	invoice, items, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice edited",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Strings("fields", changed),
	)
	s.metrics.RecordInvoiceEdited(ctx)
	s.emitAudit(ctx, auditdomain.ActionInvoiceUpdate, invoice, map[string]any{"fields": changed})

	resp := toResponse(invoice, items)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrInvoiceNotFound
	}

	deleted, err := s.repo.SoftDelete(ctx, s.db, invoiceID, s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	s.log.Info("invoice deleted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	s.metrics.RecordInvoiceDeleted(ctx)
	s.emitAudit(ctx, auditdomain.ActionInvoiceDelete, invoice, nil)
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	from, to, err := s.dateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		From:           from,
		To:             to,
		IncludeDeleted: req.IncludeDeleted,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], nil))
	}
	return resp, nil
}

// Get returns the invoice with its items, including soft-deleted invoices.
func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	invoice, items, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(invoice, items)
	return &resp, nil
}

func (s *Service) PreviewNextNumber(ctx context.Context) (domain.NextNumberResponse, error) {
	number, err := s.allocator.Preview(ctx)
	if err != nil {
		return domain.NextNumberResponse{}, err
	}
	return domain.NextNumberResponse{
		InvoiceNumber: number.Value,
		FiscalYear:    number.FiscalYear.Label(),
	}, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Invoice, []domain.InvoiceItem, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, domain.ErrInvoiceNotFound
	}
	items, err := s.repo.ListItems(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

func (s *Service) ensureProducts(ctx context.Context, tx *gorm.DB, lines []lineDraft) error {
	ids := productIDs(lines)
	if len(ids) == 0 {
		return nil
	}
	found, err := s.repo.ProductsExist(ctx, tx, ids)
	if err != nil {
		return err
	}
	for i, line := range lines {
		if line.productID != nil && !found[*line.productID] {
			return fmt.Errorf("items[%d]: %w", i, domain.ErrInvalidProductID)
		}
	}
	return nil
}

func (s *Service) buildItems(invoiceID snowflake.ID, drafts []lineDraft, lines []tax.Line, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(lines))
	for i, line := range lines {
		draft := drafts[i]
		items = append(items, domain.InvoiceItem{
			ID:             s.genID.Generate(),
			InvoiceID:      invoiceID,
			ProductID:      draft.productID,
			Position:       i,
			ItemName:       draft.itemName,
			HSNCode:        draft.hsnCode,
			Rate:           line.Rate,
			Quantity:       line.Quantity,
			GSTPercentage:  line.GSTPercentage,
			CGSTPercentage: line.CGSTPercentage,
			CGSTAmount:     line.CGSTAmount,
			SGSTPercentage: line.SGSTPercentage,
			SGSTAmount:     line.SGSTAmount,
			TaxableValue:   line.TaxableValue,
			Total:          line.Total,
			CreatedAt:      now,
		})
	}
	return items
}

func (s *Service) dateRange(start, end string) (*time.Time, *time.Time, error) {
	from, to, err := clock.DayRange(s.clock.Now().Location(), start, end)
	if errors.Is(err, clock.ErrInvalidDateRange) {
		return nil, nil, domain.ErrInvalidDateRange
	}
	return from, to, err
}

func (s *Service) emitAudit(ctx context.Context, action string, invoice *domain.Invoice, extra map[string]any) {
	if s.auditSvc == nil || invoice == nil {
		return
	}
	metadata := map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"invoice_type":   string(invoice.InvoiceType),
		"payment_mode":   string(invoice.PaymentMode),
		"gst_mode":       string(invoice.GSTMode),
		"grand_total":    money(invoice.GrandTotal),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}
	_ = s.auditSvc.AuditLog(ctx, action, auditdomain.TargetInvoice, invoice.ID.String(), metadata)
}

// editFields validates header changes and returns the columns to update.
func editFields(req domain.EditRequest) (map[string]any, error) {
	fields := map[string]any{}

	if req.InvoiceType != nil {
		invoiceType, err := parseInvoiceType(*req.InvoiceType)
		if err != nil {
			return nil, err
		}
		fields["invoice_type"] = invoiceType
	}
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return nil, domain.ErrInvalidCustomerName
		}
		fields["customer_name"] = name
	}
	if req.CustomerPhone != nil {
		phone, err := normalizePhone(req.CustomerPhone)
		if err != nil {
			return nil, err
		}
		fields["customer_phone"] = phone
	}
	if req.CustomerGST != nil {
		gst, err := normalizeCustomerGST(req.CustomerGST)
		if err != nil {
			return nil, err
		}
		fields["customer_gst"] = gst
	}
	if req.PaymentMode != nil {
		mode, err := parsePaymentMode(*req.PaymentMode)
		if err != nil {
			return nil, err
		}
		fields["payment_mode"] = mode
	}
	return fields, nil
}

func defaultGSTMode(cfg settingdomain.NumberingConfig, mode domain.PaymentMode) tax.GSTMode {
	if mode == domain.PaymentModeOnline {
		return cfg.OnlineGSTMode
	}
	return cfg.CashGSTMode
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInvoiceID
	}
	return id, nil
}
