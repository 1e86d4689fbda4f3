package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
)

func setupInvoicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	invoices := `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'created',
  date DATETIME NOT NULL,
  estimate_id TEXT,
  user_id TEXT NOT NULL,
  owner_id TEXT,
  user_vat_reg_no TEXT,
  address TEXT,
  tax_type TEXT NOT NULL,
  tax_note TEXT,
  letter TEXT,
  terms TEXT,
  note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	index := `CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_number ON invoices (number);`
	positions := `
CREATE TABLE IF NOT EXISTS invoice_positions (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  description TEXT NOT NULL,
  tags TEXT NOT NULL DEFAULT '{}',
  quantity NUMERIC NOT NULL DEFAULT 1,
  amount INTEGER NOT NULL,
  amount_currency TEXT NOT NULL,
  amount_type TEXT NOT NULL,
  amount_rate NUMERIC NOT NULL DEFAULT 0,
  tax_type TEXT,
  sort INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{invoices, index, positions} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestRepositoryCreateWithPositions(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	estimateID := uuid.New()
	userID := uuid.New()
	invoice := &models.Invoice{
		Number:     "20240003",
		Status:     enums.InvoiceStatusCreated,
		Date:       time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		EstimateID: &estimateID,
		UserID:     userID,
		TaxType:    "standard",
	}
	require.NoError(t, repo.Create(ctx, invoice))
	require.NotEqual(t, uuid.Nil, invoice.ID)

	positions := []models.InvoicePosition{
		{InvoiceID: invoice.ID, UserID: userID, Description: "Second", Quantity: decimal.NewFromInt(1), Amount: 500, AmountCurrency: enums.CurrencyUSD, AmountType: enums.AmountTypeNet, AmountRate: decimal.NewFromInt(7), Sort: 1},
		{InvoiceID: invoice.ID, UserID: userID, Description: "First", Quantity: decimal.NewFromInt(2), Amount: 5000, AmountCurrency: enums.CurrencyUSD, AmountType: enums.AmountTypeNet, AmountRate: decimal.NewFromInt(19), Sort: 0},
	}
	require.NoError(t, repo.CreatePositions(ctx, positions))

	found, err := repo.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, found.Positions, 2)
	assert.Equal(t, "First", found.Positions[0].Description)
	assert.Equal(t, "Second", found.Positions[1].Description)
	assert.Equal(t, int64(10500), found.Totals().Net()[enums.CurrencyUSD].Amount())

	byEstimate, err := repo.ListByEstimateID(ctx, estimateID)
	require.NoError(t, err)
	require.Len(t, byEstimate, 1)
	assert.Equal(t, invoice.ID, byEstimate[0].ID)
}

func TestRepositoryNumbersWithPrefix(t *testing.T) {
	db := setupInvoicesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, number := range []string{"20230011", "20240001", "20240002", "2024_X"} {
		require.NoError(t, repo.Create(ctx, &models.Invoice{
			Number:  number,
			Status:  enums.InvoiceStatusCreated,
			Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			UserID:  uuid.New(),
			TaxType: "standard",
		}))
	}

	numbers, err := repo.NumbersWithPrefix(ctx, "2024")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"20240001", "20240002", "2024_X"}, numbers)

	literal, err := repo.NumbersWithPrefix(ctx, "2024_")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024_X"}, literal)
}

func TestRepositoryCreatePositionsEmpty(t *testing.T) {
	db := setupInvoicesTestDB(t)
	require.NoError(t, NewRepository(db).CreatePositions(context.Background(), nil))
}
