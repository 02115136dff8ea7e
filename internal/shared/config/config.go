package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Log        LogConfig        `mapstructure:"log"`
	Store      StoreConfig      `mapstructure:"store"`
	Gateways   GatewaysConfig   `mapstructure:"gateways"`
	Poller     PollerConfig     `mapstructure:"poller"`
	Operator   OperatorConfig   `mapstructure:"operator"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig describes the storefront the charges are created for.
type StoreConfig struct {
	Name string `mapstructure:"name"`
	// PublicURL is the externally reachable base URL of this service,
	// used to build webhook notification URLs.
	PublicURL string `mapstructure:"public_url"`
	// ConfirmationURL is a template for the order-confirmation page.
	// The literal "{order}" is replaced by the order number.
	ConfirmationURL string `mapstructure:"confirmation_url"`
}

// GatewaysConfig groups the per-variant gateway settings.
type GatewaysConfig struct {
	LinkCheckout GatewayConfig `mapstructure:"linkcheckout"`
	Pix          GatewayConfig `mapstructure:"pix"`
}

// GatewayConfig holds a single gateway's credentials and behavior flags.
type GatewayConfig struct {
	Token         string `mapstructure:"token"`
	Environment   string `mapstructure:"environment"` // staging, production
	ProductionURL string `mapstructure:"production_url"`
	StagingURL    string `mapstructure:"staging_url"`
	BearerPrefix  bool   `mapstructure:"bearer_prefix"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Debug         bool   `mapstructure:"debug"`

	MaxInstallments int    `mapstructure:"max_installments"`
	InstallmentRule string `mapstructure:"installment_rule"`
	ForwardFees     bool   `mapstructure:"forward_fees"`

	PixExpiration       time.Duration `mapstructure:"pix_expiration"`
	Description         string        `mapstructure:"description"`
	InternalDescription string        `mapstructure:"internal_description"`

	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BaseURL returns the endpoint selected by Environment.
func (c GatewayConfig) BaseURL() string {
	if strings.EqualFold(c.Environment, "production") {
		return c.ProductionURL
	}
	return c.StagingURL
}

// BreakerConfig holds circuit breaker thresholds for a gateway.
type BreakerConfig struct {
	FailureThreshold    uint32        `mapstructure:"failure_threshold"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
	MaxHalfOpenRequests uint32        `mapstructure:"max_half_open_requests"`
}

// PollerConfig holds polling fallback scheduler configuration.
type PollerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	Window    time.Duration `mapstructure:"window"`
	BatchSize int           `mapstructure:"batch_size"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
}

// OperatorConfig holds operator authentication configuration.
type OperatorConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// ArchiveConfig holds raw payload archive configuration (S3 compatible).
type ArchiveConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
}

// Enabled reports whether a bucket has been configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

// HTTPClientConfig holds outbound connection pool configuration.
// Per-call deadlines come from each gateway's Timeout.
type HTTPClientConfig struct {
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	KeepAlive           time.Duration `mapstructure:"keep_alive"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/gstore")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("GSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applySecretOverrides(&cfg)

	return &cfg, nil
}

// applySecretOverrides reads sensitive values from dedicated environment variables.
func applySecretOverrides(cfg *Config) {
	overrides := map[string]*string{
		"GSTORE_DB_PASSWORD":                 &cfg.Database.Password,
		"GSTORE_REDIS_PASSWORD":              &cfg.Redis.Password,
		"GSTORE_LINKCHECKOUT_TOKEN":          &cfg.Gateways.LinkCheckout.Token,
		"GSTORE_LINKCHECKOUT_WEBHOOK_SECRET": &cfg.Gateways.LinkCheckout.WebhookSecret,
		"GSTORE_PIX_TOKEN":                   &cfg.Gateways.Pix.Token,
		"GSTORE_PIX_WEBHOOK_SECRET":          &cfg.Gateways.Pix.WebhookSecret,
		"GSTORE_OPERATOR_JWT_SECRET":         &cfg.Operator.JWTSecret,
		"GSTORE_ARCHIVE_SECRET_KEY":          &cfg.Archive.SecretAccessKey,
	}
	for env, target := range overrides {
		if value := os.Getenv(env); value != "" {
			*target = value
		}
	}
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "gstore")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 50)
	v.SetDefault("http_client.max_idle_conns_per_host", 10)
	v.SetDefault("http_client.max_conns_per_host", 20)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 5*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 5*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Store defaults
	v.SetDefault("store.name", "Gstore")
	v.SetDefault("store.public_url", "http://localhost:8080")
	v.SetDefault("store.confirmation_url", "http://localhost/checkout/order-received/{order}")

	// Gateway defaults
	v.SetDefault("gateways.linkcheckout.environment", "staging")
	v.SetDefault("gateways.linkcheckout.production_url", "https://api.linkcheckout.com.br/v1/links")
	v.SetDefault("gateways.linkcheckout.staging_url", "https://sandbox.api.linkcheckout.com.br/v1/links")
	v.SetDefault("gateways.linkcheckout.bearer_prefix", true)
	v.SetDefault("gateways.linkcheckout.max_installments", 1)
	v.SetDefault("gateways.linkcheckout.timeout", 20*time.Second)
	v.SetDefault("gateways.linkcheckout.breaker.failure_threshold", 5)
	v.SetDefault("gateways.linkcheckout.breaker.open_timeout", 60*time.Second)
	v.SetDefault("gateways.linkcheckout.breaker.max_half_open_requests", 1)

	v.SetDefault("gateways.pix.environment", "staging")
	v.SetDefault("gateways.pix.production_url", "https://api.pixcharge.com.br/v2/charges")
	v.SetDefault("gateways.pix.staging_url", "https://sandbox.api.pixcharge.com.br/v2/charges")
	v.SetDefault("gateways.pix.bearer_prefix", false)
	v.SetDefault("gateways.pix.pix_expiration", 30*time.Minute)
	v.SetDefault("gateways.pix.timeout", 20*time.Second)
	v.SetDefault("gateways.pix.breaker.failure_threshold", 5)
	v.SetDefault("gateways.pix.breaker.open_timeout", 60*time.Second)
	v.SetDefault("gateways.pix.breaker.max_half_open_requests", 1)

	// Poller defaults
	v.SetDefault("poller.enabled", true)
	v.SetDefault("poller.interval", time.Hour)
	v.SetDefault("poller.window", 24*time.Hour)
	v.SetDefault("poller.batch_size", 50)
	v.SetDefault("poller.lock_ttl", 10*time.Minute)

	// Operator defaults
	v.SetDefault("operator.issuer", "gstore")

	// Archive defaults
	v.SetDefault("archive.region", "auto")
	v.SetDefault("archive.prefix", "webhooks")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "gstore-payments")
}
