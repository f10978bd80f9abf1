package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListRequest{
		Name:            strings.TrimSpace(req.Name),
		Category:        strings.TrimSpace(req.Category),
		IncludeArchived: req.IncludeArchived,
		SortBy:          strings.TrimSpace(req.SortBy),
		OrderBy:         strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if err := validatePricing(req.Rate, req.GSTPercentage); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	hsn, err := tax.NormalizeHSNCode(req.HSNCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:            s.genID.Generate().Int64(),
		Name:          name,
		Category:      trimmedOrNil(req.Category),
		HSNCode:       hsn,
		Rate:          tax.Round(req.Rate),
		GSTPercentage: tax.Round(req.GSTPercentage),
		Quantity:      req.Quantity,
		Comments:      trimmedOrNil(req.Comments),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionProductCreate, p)
	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Category != nil {
		item.Category = trimmedOrNil(req.Category)
	}
	if req.HSNCode != nil {
		hsn, err := tax.NormalizeHSNCode(req.HSNCode)
		if err != nil {
			return nil, err
		}
		item.HSNCode = hsn
	}
	if req.Rate != nil {
		item.Rate = tax.Round(*req.Rate)
	}
	if req.GSTPercentage != nil {
		item.GSTPercentage = tax.Round(*req.GSTPercentage)
	}
	if err := validatePricing(item.Rate, item.GSTPercentage); err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.Comments != nil {
		item.Comments = trimmedOrNil(req.Comments)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionProductUpdate, item)
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.DeletedAt != nil {
		resp := s.toResponse(item)
		return &resp, nil
	}

	now := time.Now().UTC()
	item.DeletedAt = &now
	item.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionProductArchive, item)
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		refs, err := s.repo.CountInvoiceReferences(ctx, tx, item.ID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrProductInUse
		}
		return s.repo.Delete(ctx, tx, item.ID)
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case db.IsForeignKeyErr(err):
		return domain.ErrProductInUse
	default:
		return err
	}

	s.log.Info("product deleted", zap.Int64("product_id", item.ID))
	s.emitAudit(ctx, auditdomain.ActionProductDelete, item)
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, p *domain.Product) {
	if s.auditSvc == nil || p == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, action, auditdomain.TargetProduct, strconv.FormatInt(p.ID, 10), map[string]any{
		"name":           p.Name,
		"rate":           p.Rate.StringFixed(2),
		"gst_percentage": p.GSTPercentage.StringFixed(2),
	})
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(p.ID).String(),
		Name:          p.Name,
		Category:      p.Category,
		HSNCode:       p.HSNCode,
		Rate:          p.Rate.StringFixed(2),
		GSTPercentage: p.GSTPercentage.StringFixed(2),
		Quantity:      p.Quantity,
		Comments:      p.Comments,
		DeletedAt:     p.DeletedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func validatePricing(rate, gst decimal.Decimal) error {
	if rate.IsNegative() {
		return tax.ErrInvalidRate
	}
	if gst.IsNegative() || gst.GreaterThan(decimal.NewFromInt(100)) {
		return tax.ErrInvalidGSTPercentage
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
