package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "LISTINGZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	PropagationModeInline = "inline"
	PropagationModeAsync  = "async"

	defaultSQLiteDSN = "file:listingz.db?cache=shared&_fk=1"
)

const (
	EnvAppEnv             = "LISTINGZ_APP_ENV"
	EnvPort               = "LISTINGZ_APP_PORT"
	EnvDBDSN              = "LISTINGZ_DB_DSN"
	EnvDBHost             = "LISTINGZ_DB_HOST"
	EnvDBUser             = "LISTINGZ_DB_USER"
	EnvDBName             = "LISTINGZ_DB_NAME"
	EnvRedisURL           = "LISTINGZ_REDIS_URL"
	EnvJWTSecret          = "LISTINGZ_JWT_SECRET"
	EnvJWTIssuer          = "LISTINGZ_JWT_ISSUER"
	EnvJWTExpMins         = "LISTINGZ_JWT_EXPIRATION_MINUTES"
	EnvRefreshTTLMinutes  = "LISTINGZ_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite          = "LISTINGZ_USE_SQLITE"
	EnvPropagationMode    = "LISTINGZ_PROPAGATION_MODE"
	EnvPropagationPeerURL = "LISTINGZ_PROPAGATION_PEER_URL"
	EnvServiceToken       = "LISTINGZ_SERVICE_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
