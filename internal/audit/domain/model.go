package domain

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         int64             `gorm:"primaryKey"`
	ActorID    *int64            `gorm:"column:actor_id;index"`
	ActorRole  string            `gorm:"column:actor_role;type:varchar(20)"`
	Action     string            `gorm:"type:varchar(64);not null;index"`
	TargetType string            `gorm:"column:target_type;type:varchar(32);not null;index:ix_audit_logs_target,priority:1"`
	TargetID   string            `gorm:"column:target_id;type:varchar(64);index:ix_audit_logs_target,priority:2"`
	Metadata   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

const (
	ActionInvoiceCreate  = "invoice.create"
	ActionInvoiceUpdate  = "invoice.update"
	ActionInvoiceDelete  = "invoice.delete"
	ActionProductCreate  = "product.create"
	ActionProductUpdate  = "product.update"
	ActionProductArchive = "product.archive"
	ActionProductDelete  = "product.delete"
	ActionSettingUpdate  = "setting.update"
	ActionUserCreate     = "user.create"
	ActionUserUpdate     = "user.update"
	ActionUserDelete     = "user.delete"
	ActionExpenseCreate  = "expense.create"
	ActionExpenseUpdate  = "expense.update"
	ActionExpenseDelete  = "expense.delete"
)

const (
	TargetInvoice = "invoice"
	TargetProduct = "product"
	TargetSetting = "setting"
	TargetUser    = "user"
	TargetExpense = "expense"
)
