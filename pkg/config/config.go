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
	Stripe       StripeConfig
	Settlement   SettlementConfig
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
	Env          string `envconfig:"SHOPLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPLINK_DB_DSN"`
	Driver string `envconfig:"SHOPLINK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SHOPLINK_DB_HOST"`
	Port     int    `envconfig:"SHOPLINK_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOPLINK_DB_USER"`
	Password string `envconfig:"SHOPLINK_DB_PASSWORD"`
	Name     string `envconfig:"SHOPLINK_DB_NAME"`
	SSLMode  string `envconfig:"SHOPLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPLINK_REDIS_URL"`
	Address      string        `envconfig:"SHOPLINK_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"SHOPLINK_STRIPE_API_KEY"`
	Secret string `envconfig:"SHOPLINK_STRIPE_SECRET"`
	Env    string `envconfig:"SHOPLINK_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	return strings.TrimSpace(strings.ToLower(s.Env))
}

// SettlementConfig tunes the checkout settlement processor. All knobs are
// injected at construction so the processor never reads ambient environment.
type SettlementConfig struct {
	// CurrencyPrecision is the decimal scale used when rounding persisted
	// monetary amounts (2 for USD cents).
	CurrencyPrecision int32 `envconfig:"SHOPLINK_SETTLEMENT_CURRENCY_PRECISION" default:"2"`
	// EventIdempotencyTTL bounds how long a processed Stripe event id is
	// remembered for redelivery suppression.
	EventIdempotencyTTL time.Duration `envconfig:"SHOPLINK_SETTLEMENT_EVENT_IDEMPOTENCY_TTL" default:"72h"`
	// EventIdempotencyScope namespaces the redis keys used by the guard.
	EventIdempotencyScope string `envconfig:"SHOPLINK_SETTLEMENT_EVENT_IDEMPOTENCY_SCOPE" default:"stripe_checkout"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPLINK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	q := u.Query()
	q.Set("sslmode", db.SSLMode)
	u.RawQuery = q.Encode()

	db.DSN = u.String()
	return nil
}
