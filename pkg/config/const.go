package config

const (
	EnvPrefix = "SHOPLINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "SHOPLINK_APP_ENV"
	EnvPort   = "SHOPLINK_APP_PORT"

	EnvDBDSN  = "SHOPLINK_DB_DSN"
	EnvDBHost = "SHOPLINK_DB_HOST"
	EnvDBUser = "SHOPLINK_DB_USER"
	EnvDBName = "SHOPLINK_DB_NAME"

	EnvRedisURL = "SHOPLINK_REDIS_URL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
