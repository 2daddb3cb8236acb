package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/proxima/backend/internal/domain/billing"
	"github.com/proxima/backend/internal/domain/catalog"
	"github.com/proxima/backend/internal/domain/ledger"
	"github.com/proxima/backend/internal/domain/partner"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&catalog.StockEntry{},
		&partner.Client{},
		&billing.Invoice{},
		&billing.InvoiceLine{},
		&billing.CreditNote{},
		&billing.CreditNoteLine{},
		&ledger.Payment{},
		&ledger.Allocation{},
	)
	require.NoError(t, err)

	return db
}
