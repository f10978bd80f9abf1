// Package audittest provides a testify mock of the audit service.
package audittest

import (
	"context"

	"github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

var _ domain.Service = (*Service)(nil)

func (m *Service) AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error {
	args := m.Called(ctx, action, targetType, targetID, metadata)
	return args.Error(0)
}

func (m *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).([]domain.Response)
	return resp, args.Error(1)
}
