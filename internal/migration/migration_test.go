package migration

import (
	"io/fs"
	"strings"
	"testing"

	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AutoMigratesNonPostgres(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Run(db, "sqlite"))
	// second run is a no-op
	require.NoError(t, Run(db, "sqlite"))

	for _, table := range []string{
		"users", "products", "invoices", "invoice_items",
		"invoice_sequences", "settings", "expenses", "audit_logs",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRun_RequiresHandle(t *testing.T) {
	assert.Error(t, Run(nil, "sqlite"))
	assert.Error(t, RunMigrations(nil))
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSchema_InvoiceItemsReferenceProducts(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, Run(db, "sqlite"))
	assert.True(t, db.Migrator().HasConstraint(&invoicedomain.InvoiceItem{}, "Product"))

	up, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "product_id BIGINT REFERENCES products (id) ON DELETE RESTRICT")
	assert.Contains(t, string(up), "cgst_percentage NUMERIC(6,3)")
	assert.Contains(t, string(up), "sgst_percentage NUMERIC(6,3)")
}
