package service

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	obscontext "github.com/Rosario027/finalerp/internal/observability/context"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) auditdomain.Service {
	db := dbtest.Open(t, &auditdomain.AuditLog{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(Params{DB: db, Log: zap.NewNop(), GenID: node})
}

func TestAuditLog_RecordsActorAndRequest(t *testing.T) {
	svc := newTestService(t)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "42", "admin")

	err := svc.AuditLog(ctx, auditdomain.ActionInvoiceCreate, auditdomain.TargetInvoice, "100", map[string]any{
		"invoice_number": "FY25-26/001",
	})
	require.NoError(t, err)

	logs, err := svc.List(context.Background(), auditdomain.ListRequest{TargetType: auditdomain.TargetInvoice})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, auditdomain.ActionInvoiceCreate, logs[0].Action)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, "42", *logs[0].ActorID)
	assert.Equal(t, "admin", logs[0].ActorRole)
	assert.Equal(t, "FY25-26/001", logs[0].Metadata["invoice_number"])
	assert.Equal(t, "req-1", logs[0].Metadata["request_id"])
}

func TestAuditLog_RequiresAction(t *testing.T) {
	svc := newTestService(t)
	err := svc.AuditLog(context.Background(), " ", "invoice", "1", nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestList_RejectsInvertedRange(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	earlier := now.Add(-time.Hour)
	_, err := svc.List(context.Background(), auditdomain.ListRequest{StartAt: &now, EndAt: &earlier})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
