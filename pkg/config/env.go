package config

// EnvPrefix is the envconfig prefix for all service configuration.
const EnvPrefix = "FISHWORKS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "FISHWORKS_APP_ENV"
	EnvPort       = "FISHWORKS_APP_PORT"
	EnvDBDSN      = "FISHWORKS_DB_DSN"
	EnvDBHost     = "FISHWORKS_DB_HOST"
	EnvDBUser     = "FISHWORKS_DB_USER"
	EnvDBName     = "FISHWORKS_DB_NAME"
	EnvRedisURL   = "FISHWORKS_REDIS_URL"
	EnvJWTSecret  = "FISHWORKS_JWT_SECRET"
	EnvJWTIssuer  = "FISHWORKS_JWT_ISSUER"
	EnvJWTExpMins = "FISHWORKS_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
