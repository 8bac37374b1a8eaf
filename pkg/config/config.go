package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Dispatch     DispatchConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ORIGEN_APP_ENV" required:"true"`
	Port         string   `envconfig:"ORIGEN_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ORIGEN_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"ORIGEN_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"ORIGEN_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ORIGEN_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"ORIGEN_DB_DSN"`
	Driver string `envconfig:"ORIGEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORIGEN_DB_HOST"`
	LegacyPort     int    `envconfig:"ORIGEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORIGEN_DB_USER"`
	LegacyPassword string `envconfig:"ORIGEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORIGEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORIGEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORIGEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORIGEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORIGEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORIGEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"ORIGEN_DB_SLOW_QUERY" default:"200ms"`
	LogSQL             bool          `envconfig:"ORIGEN_DB_LOG_SQL" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORIGEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORIGEN_REDIS_ADDR"`
	Password     string        `envconfig:"ORIGEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORIGEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORIGEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORIGEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORIGEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORIGEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORIGEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig covers the bearer tokens issued by the hosted auth provider.
type AuthConfig struct {
	JWTSecret         string        `envconfig:"ORIGEN_AUTH_JWT_SECRET" required:"true"`
	JWTIssuer         string        `envconfig:"ORIGEN_AUTH_JWT_ISSUER"`
	AdminCheckTimeout time.Duration `envconfig:"ORIGEN_AUTH_ADMIN_CHECK_TIMEOUT" default:"5s"`
}

type CartConfig struct {
	StorageKey         string        `envconfig:"ORIGEN_CART_STORAGE_KEY" default:"origen_cart_v1"`
	StorageTTL         time.Duration `envconfig:"ORIGEN_CART_STORAGE_TTL" default:"0s"`
	SaveTimeout        time.Duration `envconfig:"ORIGEN_CART_SAVE_TIMEOUT" default:"2s"`
	NotificationBudget time.Duration `envconfig:"ORIGEN_CART_NOTIFICATION_BUDGET" default:"4500ms"`
	SessionCookie      string        `envconfig:"ORIGEN_CART_SESSION_COOKIE" default:"origen_cart_session"`
	SessionCookieTTL   time.Duration `envconfig:"ORIGEN_CART_SESSION_COOKIE_TTL" default:"720h"`
	IdleEviction       time.Duration `envconfig:"ORIGEN_CART_IDLE_EVICTION" default:"30m"`
}

type CheckoutConfig struct {
	Brand              string        `envconfig:"ORIGEN_CHECKOUT_BRAND" default:"ORIGEN PUTUMAYO"`
	SiteName           string        `envconfig:"ORIGEN_CHECKOUT_SITE_NAME" default:"Origen Putumayo"`
	Locale             string        `envconfig:"ORIGEN_CHECKOUT_LOCALE" default:"es"`
	DefaultSellerLabel string        `envconfig:"ORIGEN_CHECKOUT_DEFAULT_SELLER" default:"Origen Putumayo"`
	InFlightTTL        time.Duration `envconfig:"ORIGEN_CHECKOUT_IN_FLIGHT_TTL" default:"30s"`
	PhoneWindow        time.Duration `envconfig:"ORIGEN_CHECKOUT_PHONE_WINDOW" default:"1h"`
	PhoneLimit         int           `envconfig:"ORIGEN_CHECKOUT_PHONE_LIMIT" default:"5"`
	IPWindow           time.Duration `envconfig:"ORIGEN_CHECKOUT_IP_WINDOW" default:"10m"`
	IPLimit            int           `envconfig:"ORIGEN_CHECKOUT_IP_LIMIT" default:"10"`
	PIIHashKey         string        `envconfig:"ORIGEN_CHECKOUT_PII_HASH_KEY"`
}

type DispatchConfig struct {
	Host      string `envconfig:"ORIGEN_DISPATCH_HOST" default:"wa.me"`
	Recipient string `envconfig:"ORIGEN_DISPATCH_RECIPIENT"`
}

type RateLimitConfig struct {
	PublicRPS   float64 `envconfig:"ORIGEN_RATE_LIMIT_PUBLIC_RPS" default:"10"`
	PublicBurst int     `envconfig:"ORIGEN_RATE_LIMIT_PUBLIC_BURST" default:"30"`
}

// MaintenanceConfig drives the order request maintenance worker.
type MaintenanceConfig struct {
	Interval      time.Duration `envconfig:"ORIGEN_MAINTENANCE_INTERVAL" default:"1h"`
	PendingTTL    time.Duration `envconfig:"ORIGEN_MAINTENANCE_PENDING_TTL" default:"72h"`
	RetentionDays int           `envconfig:"ORIGEN_MAINTENANCE_RETENTION_DAYS" default:"180"`
	LockTTL       time.Duration `envconfig:"ORIGEN_MAINTENANCE_LOCK_TTL" default:"10m"`
	MetricsAddr   string        `envconfig:"ORIGEN_MAINTENANCE_METRICS_ADDR"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORIGEN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
