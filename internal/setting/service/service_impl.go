package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/setting/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,99}$`)

const maxValueLength = 4096

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	Clock    clock.Clock
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	clock    clock.Clock
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("setting.service"),
		repo:     p.Repo,
		clock:    p.Clock,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Get(ctx context.Context, key string) (*domain.Response, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &domain.Response{Key: key}, nil
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Set(ctx context.Context, req domain.SetRequest) (*domain.Response, error) {
	key, err := normalizeKey(req.Key)
	if err != nil {
		return nil, err
	}
	value, err := normalizeValue(key, req.Value)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	item := &domain.Setting{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.log.Info("setting updated", zap.String("key", key))
	s.emitAudit(ctx, key, value)

	stored, err := s.repo.Get(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = item
	}
	resp := toResponse(stored)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) NumberingConfig(ctx context.Context, db *gorm.DB) (domain.NumberingConfig, error) {
	if db == nil {
		db = s.db
	}
	values, err := s.repo.GetMany(ctx, db, domain.NumberingKeys)
	if err != nil {
		return domain.NumberingConfig{}, err
	}
	return domain.NumberingConfigFrom(values), nil
}

func (s *Service) emitAudit(ctx context.Context, key, value string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, auditdomain.ActionSettingUpdate, auditdomain.TargetSetting, key, map[string]any{
		"value": value,
	})
}

func normalizeKey(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return "", domain.ErrInvalidKey
	}
	return key, nil
}

func normalizeValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) > maxValueLength {
		return "", domain.ErrInvalidValue
	}

	switch key {
	case domain.KeyInvoiceSeriesStart:
		start, err := domain.ParseSeriesStart(value)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(start, 10), nil
	case domain.KeyCashGSTMode, domain.KeyOnlineGSTMode:
		mode, err := tax.ParseGSTMode(value)
		if err != nil {
			return "", domain.ErrInvalidGSTMode
		}
		return string(mode), nil
	default:
		return value, nil
	}
}

func toResponse(item *domain.Setting) domain.Response {
	value := item.Value
	updatedAt := item.UpdatedAt
	return domain.Response{
		Key:       item.Key,
		Value:     &value,
		UpdatedAt: &updatedAt,
	}
}
