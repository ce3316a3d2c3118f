package config

const EnvPrefix = "farmcart"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "FARMCART_DB_DSN"
	EnvDBHost = "FARMCART_DB_HOST"
	EnvDBUser = "FARMCART_DB_USER"
	EnvDBName = "FARMCART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
