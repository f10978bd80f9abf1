package option

import (
	"testing"
	"time"

	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type row struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
	DeletedAt *time.Time
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := dbtest.Open(t, &row{})

	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	deleted := base
	rows := []row{
		{ID: 1, Name: "a", CreatedAt: base},
		{ID: 2, Name: "b", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "c", CreatedAt: base.Add(2 * time.Hour), DeletedAt: &deleted},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func apply(db *gorm.DB, opts ...QueryOption) *gorm.DB {
	stmt := db.Model(&row{})
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}

func TestApplyOperator_IsNull(t *testing.T) {
	db := setupDB(t)

	var out []row
	err := apply(db, ApplyOperator(Condition{Field: "deleted_at", Operator: IsNull})).Find(&out).Error
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestApplyOperator_Range(t *testing.T) {
	db := setupDB(t)
	from := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)

	var out []row
	err := apply(db, ApplyOperator(Condition{Field: "created_at", Operator: GTE, Value: from})).Find(&out).Error
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestWithSortBy_DefaultsToCreatedAtDesc(t *testing.T) {
	db := setupDB(t)

	var out []row
	err := apply(db, WithSortBy(QuerySortBy{SortBy: "password"})).Find(&out).Error
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(1), out[2].ID)
}

func TestWithSortBy_AllowedAsc(t *testing.T) {
	db := setupDB(t)

	var out []row
	err := apply(db, WithSortBy(WithQuerySortBy("name", "asc", map[string]bool{"name": true})), WithLimit(2)).Find(&out).Error
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
}
