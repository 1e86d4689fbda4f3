package estimates

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/estimates-backend/internal/clientgroups"
	"github.com/angelmondragon/estimates-backend/internal/invoices"
	"github.com/angelmondragon/estimates-backend/internal/users"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/db"
	"github.com/angelmondragon/estimates-backend/pkg/db/models"
	"github.com/angelmondragon/estimates-backend/pkg/enums"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/metrics"
	"github.com/angelmondragon/estimates-backend/pkg/migrate"
	"github.com/angelmondragon/estimates-backend/pkg/refnumber"
	"github.com/angelmondragon/estimates-backend/pkg/types"
)

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func setupEstimatesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.ApplySQLiteSchema(context.Background(), conn))
	return conn
}

type testEnv struct {
	conn     *gorm.DB
	svc      Service
	repo     Repository
	invoices invoices.Repository
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T, tune ...func(*Settings)) testEnv {
	t.Helper()
	conn := setupEstimatesTestDB(t)
	return newTestEnvWithRepo(t, conn, NewRepository(conn), tune...)
}

func newTestEnvWithRepo(t *testing.T, conn *gorm.DB, repo Repository, tune ...func(*Settings)) testEnv {
	t.Helper()
	return newTestEnvWithRepos(t, conn, repo, invoices.NewRepository(conn), tune...)
}

func newTestEnvWithRepos(t *testing.T, conn *gorm.DB, repo Repository, invoiceRepo invoices.Repository, tune ...func(*Settings)) testEnv {
	t.Helper()
	settings := Settings{
		Numbers:           refnumber.Default(),
		AutoNumber:        true,
		NumberMaxAttempts: 3,
		InvoiceNumbers:    refnumber.Default(),
		Letter:            config.DisabledText(),
		Terms:             config.DisabledText(),
	}
	for _, fn := range tune {
		fn(&settings)
	}

	reg := prometheus.NewRegistry()
	svc, err := NewService(
		db.NewFromConn(conn),
		repo,
		users.NewRepository(conn),
		clientgroups.Default("DE", enums.CurrencyEUR),
		invoiceRepo,
		settings,
		logger.New(logger.Options{ServiceName: "estimates-test", Output: io.Discard}),
		metrics.NewLifecycleMetrics(reg),
		WithClock(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return testEnv{conn: conn, svc: svc, repo: repo, invoices: invoiceRepo, registry: reg}
}

func seedUser(t *testing.T, conn *gorm.DB, role string) *models.User {
	t.Helper()
	vat := "DE123456789"
	user := &models.User{
		Number:    "U-" + uuid.NewString()[:8],
		Email:     uuid.NewString() + "@example.com",
		FirstName: "Mara",
		LastName:  "Lindqvist",
		Role:      role,
		VATRegNo:  &vat,
		Locale:    "de",
		BillingAddress: types.Address{
			Recipient:  "Mara Lindqvist",
			Line1:      "Torstr. 12",
			Locality:   "Berlin",
			PostalCode: "10119",
			Country:    "DE",
		},
		IsActive: true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func usdPosition(description string, amount int64, rate int64, quantity int64) PositionInput {
	q := decimal.NewFromInt(quantity)
	r := decimal.NewFromInt(rate)
	return PositionInput{
		Description:    description,
		Quantity:       &q,
		Amount:         amount,
		AmountCurrency: enums.CurrencyUSD,
		AmountType:     enums.AmountTypeNet,
		AmountRate:     &r,
	}
}

func countRows(t *testing.T, conn *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Table(table).Count(&n).Error)
	return n
}

func mustCreate(t *testing.T, env testEnv, input CreateInput) *models.Estimate {
	t.Helper()
	estimate, err := env.svc.Create(context.Background(), input)
	require.NoError(t, err)
	return estimate
}
