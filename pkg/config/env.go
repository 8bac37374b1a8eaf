package config

// EnvPrefix is handed to envconfig; every field carries its full name anyway.
const EnvPrefix = "ORIGEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "ORIGEN_APP_ENV"
	EnvPort     = "ORIGEN_APP_PORT"
	EnvLogLevel = "ORIGEN_LOG_LEVEL"

	EnvDBDSN  = "ORIGEN_DB_DSN"
	EnvDBHost = "ORIGEN_DB_HOST"
	EnvDBUser = "ORIGEN_DB_USER"
	EnvDBName = "ORIGEN_DB_NAME"

	EnvRedisURL = "ORIGEN_REDIS_URL"

	EnvAuthJWTSecret = "ORIGEN_AUTH_JWT_SECRET"

	EnvCartNotificationBudget = "ORIGEN_CART_NOTIFICATION_BUDGET"
	EnvDispatchRecipient      = "ORIGEN_DISPATCH_RECIPIENT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
