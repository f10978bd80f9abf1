package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, key string) (*Setting, error)
	GetMany(ctx context.Context, db *gorm.DB, keys []string) (map[string]string, error)
	Upsert(ctx context.Context, db *gorm.DB, setting *Setting) error
	List(ctx context.Context, db *gorm.DB) ([]Setting, error)
}
