package config

const (
	EnvPrefix = "ESTIMATES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "ESTIMATES_APP_ENV"
	EnvPort      = "ESTIMATES_APP_PORT"
	EnvDBDSN     = "ESTIMATES_DB_DSN"
	EnvDBHost    = "ESTIMATES_DB_HOST"
	EnvDBUser    = "ESTIMATES_DB_USER"
	EnvDBName    = "ESTIMATES_DB_NAME"
	EnvRedisURL  = "ESTIMATES_REDIS_URL"
	EnvUseSQLite = "ESTIMATES_USE_SQLITE"

	EnvOverdueAfter   = "ESTIMATES_OVERDUE_AFTER"
	EnvLetter         = "ESTIMATES_LETTER"
	EnvTerms          = "ESTIMATES_TERMS"
	EnvNumberGenerate = "ESTIMATES_NUMBER_GENERATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
