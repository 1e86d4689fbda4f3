package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Estimate     EstimateConfig
	Invoice      InvoiceConfig
	Billing      BillingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = driverSQLite
	}
	if cfg.App.IsProd() && cfg.DB.Driver == driverSQLite {
		return nil, fmt.Errorf("sqlite driver is not allowed in %s", cfg.App.Env)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ESTIMATES_APP_ENV" required:"true"`
	Port         string `envconfig:"ESTIMATES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ESTIMATES_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ESTIMATES_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ESTIMATES_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ESTIMATES_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// IsProd accepts both "prod" and "production".
func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

const driverSQLite = "sqlite"

type DBConfig struct {
	DSN    string `envconfig:"ESTIMATES_DB_DSN"`
	Driver string `envconfig:"ESTIMATES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ESTIMATES_DB_HOST"`
	LegacyPort     int    `envconfig:"ESTIMATES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ESTIMATES_DB_USER"`
	LegacyPassword string `envconfig:"ESTIMATES_DB_PASSWORD"`
	LegacyName     string `envconfig:"ESTIMATES_DB_NAME"`
	LegacySSLMode  string `envconfig:"ESTIMATES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ESTIMATES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESTIMATES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESTIMATES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESTIMATES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"ESTIMATES_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL            string        `envconfig:"ESTIMATES_REDIS_URL" required:"true"`
	Address        string        `envconfig:"ESTIMATES_REDIS_ADDR"`
	Password       string        `envconfig:"ESTIMATES_REDIS_PASSWORD"`
	DB             int           `envconfig:"ESTIMATES_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"ESTIMATES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"ESTIMATES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"ESTIMATES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"ESTIMATES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"ESTIMATES_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"ESTIMATES_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ESTIMATES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ESTIMATES_AUTO_MIGRATE" default:"false"`
}

// EstimateConfig holds the estimate numbering and text defaults.
type EstimateConfig struct {
	NumberSort         string `envconfig:"ESTIMATES_NUMBER_SORT" default:"([0-9]{4}[0-9]{4})"`
	NumberExtract      string `envconfig:"ESTIMATES_NUMBER_EXTRACT" default:"[0-9]{4}([0-9]{4})"`
	NumberGenerate     string `envconfig:"ESTIMATES_NUMBER_GENERATE" default:"%Y%04d"`
	NumberAutoGenerate bool   `envconfig:"ESTIMATES_NUMBER_AUTOGENERATE" default:"true"`
	NumberMaxAttempts  int    `envconfig:"ESTIMATES_NUMBER_MAX_ATTEMPTS" default:"3"`

	// OverdueAfter is the grace period after the estimate date; 0 disables overdue tracking.
	OverdueAfter time.Duration `envconfig:"ESTIMATES_OVERDUE_AFTER" default:"0"`

	Letter TextSetting `envconfig:"ESTIMATES_LETTER" default:"false"`
	Terms  TextSetting `envconfig:"ESTIMATES_TERMS" default:"false"`
	BCC    string      `envconfig:"ESTIMATES_BCC"`

	// GroupOrder lists grouping tags printed first on exported documents.
	GroupOrder []string `envconfig:"ESTIMATES_GROUP_ORDER"`
}

type InvoiceConfig struct {
	NumberSort     string `envconfig:"ESTIMATES_INVOICE_NUMBER_SORT" default:"([0-9]{4}[0-9]{4})"`
	NumberExtract  string `envconfig:"ESTIMATES_INVOICE_NUMBER_EXTRACT" default:"[0-9]{4}([0-9]{4})"`
	NumberGenerate string `envconfig:"ESTIMATES_INVOICE_NUMBER_GENERATE" default:"%Y%04d"`
}

// BillingConfig identifies the sender printed on exported documents.
type BillingConfig struct {
	Name         string `envconfig:"ESTIMATES_BILLING_NAME"`
	Organization string `envconfig:"ESTIMATES_BILLING_ORGANIZATION"`
	Address      string `envconfig:"ESTIMATES_BILLING_ADDRESS"`
	Email        string `envconfig:"ESTIMATES_BILLING_EMAIL"`
	Phone        string `envconfig:"ESTIMATES_BILLING_PHONE"`
	VATRegNo     string `envconfig:"ESTIMATES_BILLING_VAT_REG_NO"`

	// Country and Currency seed the client group registry: domestic users
	// pay the standard rate and default to Currency.
	Country  string `envconfig:"ESTIMATES_BILLING_COUNTRY" default:"DE"`
	Currency string `envconfig:"ESTIMATES_BILLING_CURRENCY" default:"EUR"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:estimates.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
