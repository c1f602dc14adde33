package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SHELTER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config is the single configuration struct constructed at startup and passed
// by reference into the components that need settings.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Uploads       UploadsConfig
	Stripe        StripeConfig
	Frontend      FrontendConfig
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
	Env          string `envconfig:"SHELTER_APP_ENV" required:"true"`
	Port         string `envconfig:"SHELTER_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"SHELTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHELTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SHELTER_DB_DSN"`

	Host     string `envconfig:"SHELTER_DB_HOST"`
	Port     int    `envconfig:"SHELTER_DB_PORT" default:"5432"`
	User     string `envconfig:"SHELTER_DB_USER"`
	Password string `envconfig:"SHELTER_DB_PASSWORD"`
	Name     string `envconfig:"SHELTER_DB_NAME"`
	SSLMode  string `envconfig:"SHELTER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHELTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHELTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHELTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHELTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHELTER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHELTER_REDIS_ADDR"`
	Password     string        `envconfig:"SHELTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHELTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHELTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHELTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHELTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHELTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHELTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHELTER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHELTER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHELTER_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"SHELTER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHELTER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHELTER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHELTER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHELTER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHELTER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHELTER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHELTER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHELTER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHELTER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHELTER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHELTER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHELTER_AUTO_MIGRATE" default:"false"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"SHELTER_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"SHELTER_MAX_UPLOAD_MB" default:"10"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"SHELTER_STRIPE_API_KEY"`
	WebhookSecret       string `envconfig:"SHELTER_STRIPE_WEBHOOK_SECRET"`
	Env                 string `envconfig:"SHELTER_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"SHELTER_STRIPE_SUBSCRIPTION_PRICE_ID"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type FrontendConfig struct {
	BaseURL string `envconfig:"SHELTER_FRONTEND_URL" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"SHELTER_DB_HOST": db.Host,
		"SHELTER_DB_USER": db.User,
		"SHELTER_DB_NAME": db.Name,
	}
	for _, key := range []string{"SHELTER_DB_HOST", "SHELTER_DB_USER", "SHELTER_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either SHELTER_DB_DSN or %s are required", strings.Join(missing, ", "))
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

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
