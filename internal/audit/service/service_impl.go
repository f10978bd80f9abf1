package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	obscontext "github.com/Rosario027/finalerp/internal/observability/context"
	"github.com/Rosario027/finalerp/pkg/db/option"
	"github.com/Rosario027/finalerp/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListLimit = 200

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[auditdomain.AuditLog]
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[auditdomain.AuditLog](p.DB),
	}
}

func (s *Service) AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := datatypes.JSONMap{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := &auditdomain.AuditLog{
		ID:         s.genID.Generate().Int64(),
		Action:     action,
		TargetType: targetType,
		TargetID:   strings.TrimSpace(targetID),
		Metadata:   payload,
		CreatedAt:  time.Now().UTC(),
	}
	if userID, role := obscontext.ActorFromContext(ctx); userID != "" {
		if parsed, err := strconv.ParseInt(userID, 10, 64); err == nil {
			entry.ActorID = &parsed
		}
		entry.ActorRole = role
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("target_id", entry.TargetID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) ([]auditdomain.Response, error) {
	if req.StartAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		return nil, auditdomain.ErrInvalidTimeRange
	}

	filter := &auditdomain.AuditLog{
		Action:     strings.TrimSpace(req.Action),
		TargetType: strings.TrimSpace(req.TargetType),
		TargetID:   strings.TrimSpace(req.TargetID),
	}

	limit := req.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	options := []option.QueryOption{
		option.WithSortBy(option.QuerySortBy{}),
		option.WithLimit(limit),
	}
	if req.StartAt != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.GTE,
			Value:    req.StartAt.UTC(),
		}))
	}
	if req.EndAt != nil {
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "created_at",
			Operator: option.LTE,
			Value:    req.EndAt.UTC(),
		}))
	}

	items, err := s.repo.Find(ctx, filter, options...)
	if err != nil {
		return nil, err
	}

	resp := make([]auditdomain.Response, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		resp = append(resp, toResponse(item))
	}
	return resp, nil
}

func toResponse(entry *auditdomain.AuditLog) auditdomain.Response {
	resp := auditdomain.Response{
		ID:         snowflake.ID(entry.ID).String(),
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		CreatedAt:  entry.CreatedAt,
	}
	if entry.ActorID != nil {
		id := snowflake.ID(*entry.ActorID).String()
		resp.ActorID = &id
	}
	if len(entry.Metadata) > 0 {
		resp.Metadata = map[string]any(entry.Metadata)
	}
	return resp
}
