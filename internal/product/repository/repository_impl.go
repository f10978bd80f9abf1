package repository

import (
	"context"
	"strings"

	"github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if !filter.IncludeArchived {
		stmt = stmt.Where("deleted_at IS NULL")
	}
	if filter.Name != "" {
		stmt = option.ApplyOperator(option.Condition{
			Field:    "LOWER(name)",
			Operator: option.LIKE,
			Value:    "%" + strings.ToLower(filter.Name) + "%",
		}).Apply(stmt)
	}
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"rate":       true,
		"quantity":   true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, category = ?, hsn_code = ?, rate = ?, gst_percentage = ?,
		     quantity = ?, comments = ?, deleted_at = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Category,
		product.HSNCode,
		product.Rate,
		product.GSTPercentage,
		product.Quantity,
		product.Comments,
		product.DeletedAt,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	result := db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repo) CountInvoiceReferences(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoice_items WHERE product_id = ?`,
		id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
