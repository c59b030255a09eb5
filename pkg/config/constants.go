package config

const (
	// EnvPrefix namespaces every environment variable this service reads.
	EnvPrefix = "vasthra"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VASTHRA_DB_DSN"
	EnvDBHost = "VASTHRA_DB_HOST"
	EnvDBUser = "VASTHRA_DB_USER"
	EnvDBName = "VASTHRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
