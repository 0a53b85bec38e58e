package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "UTSAV"

	EnvDBDSN  = "UTSAV_DB_DSN"
	EnvDBHost = "UTSAV_DB_HOST"
	EnvDBUser = "UTSAV_DB_USER"
	EnvDBName = "UTSAV_DB_NAME"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Square       SquareConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"UTSAV_APP_ENV" required:"true"`
	Port         string `envconfig:"UTSAV_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"UTSAV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"UTSAV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"UTSAV_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"UTSAV_DB_DSN"`
	Driver string `envconfig:"UTSAV_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"UTSAV_DB_HOST"`
	LegacyPort     int    `envconfig:"UTSAV_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"UTSAV_DB_USER"`
	LegacyPassword string `envconfig:"UTSAV_DB_PASSWORD"`
	LegacyName     string `envconfig:"UTSAV_DB_NAME"`
	LegacySSLMode  string `envconfig:"UTSAV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"UTSAV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"UTSAV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"UTSAV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"UTSAV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"UTSAV_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"UTSAV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"UTSAV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"UTSAV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"UTSAV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"UTSAV_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"UTSAV_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"UTSAV_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"UTSAV_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"UTSAV_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"UTSAV_AUTO_MIGRATE" default:"false"`
}

// PricingConfig carries the conversion weights for legacy tiered credit
// buckets and the fallbacks used when no lead_costs setting row exists.
type PricingConfig struct {
	LegacyStandardWeight int    `envconfig:"UTSAV_PRICING_LEGACY_STANDARD_WEIGHT" default:"10"`
	LegacyPremiumWeight  int    `envconfig:"UTSAV_PRICING_LEGACY_PREMIUM_WEIGHT" default:"25"`
	LegacyEliteWeight    int    `envconfig:"UTSAV_PRICING_LEGACY_ELITE_WEIGHT" default:"50"`
	DefaultCreditCost    int    `envconfig:"UTSAV_PRICING_DEFAULT_CREDIT_COST" default:"10"`
	DefaultLeadPrice     int64  `envconfig:"UTSAV_PRICING_DEFAULT_LEAD_PRICE" default:"50"`
	Currency             string `envconfig:"UTSAV_PRICING_CURRENCY" default:"INR"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"UTSAV_SQUARE_ACCESS_TOKEN"`
	Environment string `envconfig:"UTSAV_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"UTSAV_SQUARE_LOCATION_ID"`
}

// IsSandbox reports whether the Square client should target the sandbox host.
func (s SquareConfig) IsSandbox() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Environment), "production")
}

type GCPConfig struct {
	ProjectID       string `envconfig:"UTSAV_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"UTSAV_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	LeadEventsTopic        string `envconfig:"UTSAV_PUBSUB_LEAD_EVENTS_TOPIC" default:"utsav-lead-events"`
	LeadEventsSubscription string `envconfig:"UTSAV_PUBSUB_LEAD_EVENTS_SUBSCRIPTION" default:"utsav-lead-events-sub"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"UTSAV_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"UTSAV_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"UTSAV_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
