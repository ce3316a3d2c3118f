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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Fees         FeesConfig
	Cache        CacheConfig
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
	Env          string `envconfig:"FARMCART_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FARMCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FARMCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FARMCART_DB_DSN"`
	Driver string `envconfig:"FARMCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FARMCART_DB_HOST"`
	LegacyPort     int    `envconfig:"FARMCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FARMCART_DB_USER"`
	LegacyPassword string `envconfig:"FARMCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"FARMCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"FARMCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FARMCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FARMCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FARMCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FARMCART_REDIS_ADDR"`
	Password     string        `envconfig:"FARMCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FARMCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FARMCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FARMCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FARMCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FARMCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FARMCART_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite         bool `envconfig:"FARMCART_USE_SQLITE" default:"false"`
	AutoMigrate       bool `envconfig:"FARMCART_AUTO_MIGRATE" default:"false"`
	StrictSellerScope bool `envconfig:"FARMCART_STRICT_SELLER_SCOPE" default:"false"`
}

type OrdersConfig struct {
	// PendingDeleteWindow is how long after creation a pending order
	// may still be deleted by its buyer.
	PendingDeleteWindow time.Duration `envconfig:"FARMCART_ORDERS_PENDING_DELETE_WINDOW" default:"5m"`
	// StaleAfter is how long a pending order may sit before the cron
	// worker cancels it and restocks its items.
	StaleAfter         time.Duration `envconfig:"FARMCART_ORDERS_STALE_AFTER" default:"24h"`
	CancelledRetention time.Duration `envconfig:"FARMCART_ORDERS_CANCELLED_RETENTION" default:"2160h"`
	UpdateMaxRetries   int           `envconfig:"FARMCART_ORDERS_UPDATE_MAX_RETRIES" default:"3"`
}

type FeesConfig struct {
	DeliveryFeeCents  int64  `envconfig:"FARMCART_FEES_DELIVERY_CENTS" default:"499"`
	ServiceFeeCents   int64  `envconfig:"FARMCART_FEES_SERVICE_CENTS" default:"150"`
	PriceEpsilonCents string `envconfig:"FARMCART_FEES_PRICE_EPSILON_CENTS" default:"1"`
}

type CacheConfig struct {
	OrderTTL time.Duration `envconfig:"FARMCART_CACHE_ORDER_TTL" default:"10m"`
}

type PubSubConfig struct {
	ProjectID          string `envconfig:"FARMCART_PUBSUB_PROJECT_ID"`
	OrdersTopic        string `envconfig:"FARMCART_PUBSUB_ORDERS_TOPIC" default:"fc-order-events"`
	OrdersSubscription string `envconfig:"FARMCART_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FARMCART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FARMCART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FARMCART_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
