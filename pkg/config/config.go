package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Propagation   PropagationConfig
	ServiceAuth   ServiceAuthConfig
	Mail          MailConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Propagation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LISTINGZ_APP_ENV" required:"true"`
	Port         string `envconfig:"LISTINGZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LISTINGZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LISTINGZ_LOG_WARN_STACK" default:"false"`
	// PublicBaseURL is used to build links sent by email.
	PublicBaseURL   string        `envconfig:"LISTINGZ_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	ShutdownTimeout time.Duration `envconfig:"LISTINGZ_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LISTINGZ_DB_DSN"`
	Driver string `envconfig:"LISTINGZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LISTINGZ_DB_HOST"`
	LegacyPort     int    `envconfig:"LISTINGZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LISTINGZ_DB_USER"`
	LegacyPassword string `envconfig:"LISTINGZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"LISTINGZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"LISTINGZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LISTINGZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LISTINGZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LISTINGZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LISTINGZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LISTINGZ_REDIS_URL"`
	Address      string        `envconfig:"LISTINGZ_REDIS_ADDR"`
	Password     string        `envconfig:"LISTINGZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"LISTINGZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LISTINGZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LISTINGZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LISTINGZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LISTINGZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LISTINGZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"LISTINGZ_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LISTINGZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LISTINGZ_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LISTINGZ_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LISTINGZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LISTINGZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LISTINGZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LISTINGZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LISTINGZ_ARGON_KEY_LEN" default:"32"`
	// ResetTokenTTL bounds how long a password reset token stays usable.
	ResetTokenTTL time.Duration `envconfig:"LISTINGZ_PASSWORD_RESET_TTL" default:"1h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ForgotWindow       time.Duration `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_FORGOT_WINDOW" default:"15m"`
	ForgotEmailLimit   int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_FORGOT_EMAIL_LIMIT" default:"3"`
	ForgotIPLimit      int           `envconfig:"LISTINGZ_AUTH_RATE_LIMIT_FORGOT_IP_LIMIT" default:"10"`
}

// RateLimitConfig drives the in-process per-IP token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"LISTINGZ_RATE_LIMIT_RPS" default:"20"`
	Burst             int           `envconfig:"LISTINGZ_RATE_LIMIT_BURST" default:"40"`
	EntryTTL          time.Duration `envconfig:"LISTINGZ_RATE_LIMIT_ENTRY_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LISTINGZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LISTINGZ_AUTO_MIGRATE" default:"false"`
}

// PropagationConfig controls how account status changes reach the listings service.
type PropagationConfig struct {
	PeerURL     string        `envconfig:"LISTINGZ_PROPAGATION_PEER_URL" default:"http://localhost:8082"`
	Mode        string        `envconfig:"LISTINGZ_PROPAGATION_MODE" default:"inline"`
	Timeout     time.Duration `envconfig:"LISTINGZ_PROPAGATION_TIMEOUT" default:"5s"`
	MaxAttempts int           `envconfig:"LISTINGZ_PROPAGATION_MAX_ATTEMPTS" default:"5"`
	QueueSize   int           `envconfig:"LISTINGZ_PROPAGATION_QUEUE_SIZE" default:"256"`
	BaseBackoff time.Duration `envconfig:"LISTINGZ_PROPAGATION_BASE_BACKOFF" default:"500ms"`
	MaxBackoff  time.Duration `envconfig:"LISTINGZ_PROPAGATION_MAX_BACKOFF" default:"10s"`
}

// IsAsync reports whether propagation runs through the background dispatcher.
func (p PropagationConfig) IsAsync() bool {
	return strings.EqualFold(strings.TrimSpace(p.Mode), PropagationModeAsync)
}

func (p PropagationConfig) validate() error {
	mode := strings.ToLower(strings.TrimSpace(p.Mode))
	if mode != PropagationModeAsync && mode != PropagationModeInline {
		return fmt.Errorf("%s must be %q or %q, got %q", EnvPropagationMode, PropagationModeInline, PropagationModeAsync, p.Mode)
	}
	if _, err := url.Parse(p.PeerURL); err != nil {
		return fmt.Errorf("parsing %s: %w", EnvPropagationPeerURL, err)
	}
	return nil
}

// ServiceAuthConfig holds the shared secret used between the two services.
type ServiceAuthConfig struct {
	Token string `envconfig:"LISTINGZ_SERVICE_TOKEN"`
}

type MailConfig struct {
	SMTPHost    string `envconfig:"LISTINGZ_SMTP_HOST"`
	SMTPPort    int    `envconfig:"LISTINGZ_SMTP_PORT" default:"587"`
	Username    string `envconfig:"LISTINGZ_SMTP_USERNAME"`
	Password    string `envconfig:"LISTINGZ_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"LISTINGZ_MAIL_FROM" default:"no-reply@listingz.local"`
}

// Enabled reports whether an SMTP relay was configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SMTPHost) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LISTINGZ_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
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
