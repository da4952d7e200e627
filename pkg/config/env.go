package config

// EnvPrefix is the envconfig prefix shared by all sections.
const EnvPrefix = "DISTROHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISTROHUB_DB_DSN"
	EnvDBHost = "DISTROHUB_DB_HOST"
	EnvDBUser = "DISTROHUB_DB_USER"
	EnvDBName = "DISTROHUB_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
