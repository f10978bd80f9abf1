package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/expense/domain"
	obsctx "github.com/Rosario027/finalerp/internal/observability/context"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db/option"
	"github.com/Rosario027/finalerp/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     repository.Repository[domain.Expense]
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("expense.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     repository.ProvideStore[domain.Expense](p.DB),
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	if !req.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := s.clock.Now().UTC()
	expense := &domain.Expense{
		ID:          s.genID.Generate().Int64(),
		Description: description,
		Amount:      tax.Round(req.Amount),
		Category:    trimmedOrNil(req.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actor, _ := obsctx.ActorFromContext(ctx); actor != "" {
		if id, err := strconv.ParseInt(actor, 10, 64); err == nil {
			expense.CreatedBy = &id
		}
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.log.Info("expense recorded",
		zap.Int64("expense_id", expense.ID),
		zap.String("amount", expense.Amount.StringFixed(tax.MoneyScale)),
	)
	s.emitAudit(ctx, auditdomain.ActionExpenseCreate, expense)
	resp := toResponse(expense)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	expense, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, domain.ErrInvalidDescription
		}
		expense.Description = description
		fields["description"] = description
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		expense.Amount = tax.Round(*req.Amount)
		fields["amount"] = expense.Amount
	}
	if req.Category != nil {
		expense.Category = trimmedOrNil(req.Category)
		fields["category"] = expense.Category
	}
	if len(fields) == 0 {
		resp := toResponse(expense)
		return &resp, nil
	}

	expense.UpdatedAt = s.clock.Now().UTC()
	fields["updated_at"] = expense.UpdatedAt
	if err := s.repo.Update(ctx, expense.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	s.emitAudit(ctx, auditdomain.ActionExpenseUpdate, expense)
	resp := toResponse(expense)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	expense, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, expense.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	s.log.Info("expense deleted", zap.Int64("expense_id", expense.ID))
	s.emitAudit(ctx, auditdomain.ActionExpenseDelete, expense)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	expense, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(expense)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	from, to, err := clock.DayRange(s.clock.Now().Location(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, domain.ErrInvalidDateRange
	}

	opts := []option.QueryOption{}
	if from != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.GTE, Value: *from}))
	}
	if to != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.LT, Value: *to}))
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "category", Operator: option.EQ, Value: category}))
	}
	opts = append(opts, option.WithSortBy(option.WithQuerySortBy("created_at", "desc", nil)))

	items, err := s.repo.Find(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Expense, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed <= 0 {
		return nil, domain.ErrInvalidID
	}
	expense, err := s.repo.FindOne(ctx, &domain.Expense{ID: parsed.Int64()})
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, domain.ErrNotFound
	}
	return expense, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, expense *domain.Expense) {
	if s.auditSvc == nil || expense == nil {
		return
	}
	metadata := map[string]any{
		"description": expense.Description,
		"amount":      expense.Amount.StringFixed(tax.MoneyScale),
	}
	if expense.Category != nil {
		metadata["category"] = *expense.Category
	}
	_ = s.auditSvc.AuditLog(ctx, action, auditdomain.TargetExpense, strconv.FormatInt(expense.ID, 10), metadata)
}

func toResponse(e *domain.Expense) domain.Response {
	return domain.Response{
		ID:          strconv.FormatInt(e.ID, 10),
		Description: e.Description,
		Amount:      e.Amount.StringFixed(tax.MoneyScale),
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
