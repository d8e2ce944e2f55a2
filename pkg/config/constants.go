package config

// EnvPrefix namespaces every TradeLink environment variable.
const EnvPrefix = "TRADELINK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "TRADELINK_APP_ENV"
	EnvPort     = "TRADELINK_APP_PORT"
	EnvDBDSN    = "TRADELINK_DB_DSN"
	EnvDBHost   = "TRADELINK_DB_HOST"
	EnvDBUser   = "TRADELINK_DB_USER"
	EnvDBName   = "TRADELINK_DB_NAME"
	EnvRedisURL = "TRADELINK_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
