package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fundbridge/donate/pkg/logger"
)

const defaultConfigPath = "./config.yaml"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	PaymentAPI   PaymentAPIConfig   `yaml:"payment_api"`
	Organization OrganizationConfig `yaml:"organization"`
	Cache        CacheConfig        `yaml:"cache"`
	Flow         FlowConfig         `yaml:"flow"`
	Security     SecurityConfig     `yaml:"security"`
	WebSocket    WebSocketConfig    `yaml:"websocket"`
	Logger       logger.Config      `yaml:"logger"`
	LogSink      LogSinkConfig      `yaml:"log_sink"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Environment  string        `yaml:"environment"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // postgres (lib/pq) or pgx
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	DBName          string        `yaml:"name"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// PaymentAPIConfig describes the external donation-processing API.
type PaymentAPIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBackoffBase time.Duration `yaml:"retry_backoff_base"`
	Login            string        `yaml:"login"`
	Password         string        `yaml:"password"`
	TokenValidity    time.Duration `yaml:"token_validity"`
}

type OrganizationConfig struct {
	ID            string              `yaml:"id"`
	WidgetSnippet WidgetSnippetConfig `yaml:"widget_snippet"`
}

type WidgetSnippetConfig struct {
	UIVersion    int      `yaml:"ui_version"`
	DonationFlow []string `yaml:"donation_flow"`
	ButtonID     string   `yaml:"button_id"`
	ButtonText   string   `yaml:"button_text"`
	ButtonStyle  string   `yaml:"button_style"`
	ScriptID     string   `yaml:"script_id"`
	CampaignID   string   `yaml:"campaign_id"`
}

type CacheConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Prefix       string        `yaml:"prefix"`
	CurrencyTTL  time.Duration `yaml:"currency_ttl"`
	BrokersTTL   time.Duration `yaml:"brokers_ttl"`
	StatsTTL     time.Duration `yaml:"stats_ttl"`
	ClearBatch   int           `yaml:"clear_batch"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type FlowConfig struct {
	SessionTTL          time.Duration `yaml:"session_ttl"`
	SearchCooldown      time.Duration `yaml:"search_cooldown"`
	SearchMinLength     int           `yaml:"search_min_length"`
	SearchPageSize      int           `yaml:"search_page_size"`
	DefaultCurrency     string        `yaml:"default_currency"`
	DefaultCurrencyName string        `yaml:"default_currency_name"`
}

type SecurityConfig struct {
	CronSecret     string   `yaml:"cron_secret"`
	JWTSecret      string   `yaml:"jwt_secret"`
	JWTIssuer      string   `yaml:"jwt_issuer"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size"`
	WriteBufferSize int           `yaml:"write_buffer_size"`
	CheckOrigin     bool          `yaml:"check_origin"`
	PingPeriod      time.Duration `yaml:"ping_period"`
}

// LogSinkConfig controls persistence of log lines into the logs table.
type LogSinkConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Level      string `yaml:"level"`
	BufferSize int    `yaml:"buffer_size"`
}

// Load reads .env (optional) and the yaml config file, then applies secrets
// from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := os.Getenv("DONATE_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(configData)
}

// Parse decodes yaml config, overlays environment secrets and validates.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"GIVING_BLOCK_LOGIN":    &c.PaymentAPI.Login,
		"GIVING_BLOCK_PASSWORD": &c.PaymentAPI.Password,
		"CRON_SECRET":           &c.Security.CronSecret,
		"JWT_SECRET":            &c.Security.JWTSecret,
		"DATABASE_PASSWORD":     &c.Database.Password,
		"REDIS_PASSWORD":        &c.Cache.Password,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
}

// Validate rejects unusable configs and fills defaults.
func (c *Config) Validate() error {
	if c.PaymentAPI.BaseURL == "" {
		return errors.New("payment_api.base_url is required")
	}
	if c.Organization.ID == "" {
		return errors.New("organization.id is required")
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 20 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 20 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.PaymentAPI.Timeout == 0 {
		c.PaymentAPI.Timeout = 15 * time.Second
	}
	if c.PaymentAPI.MaxRetries == 0 {
		c.PaymentAPI.MaxRetries = 2
	}
	if c.PaymentAPI.RetryBackoffBase == 0 {
		c.PaymentAPI.RetryBackoffBase = 500 * time.Millisecond
	}
	if c.PaymentAPI.TokenValidity == 0 {
		c.PaymentAPI.TokenValidity = 2 * time.Hour
	}

	w := &c.Organization.WidgetSnippet
	if w.UIVersion == 0 {
		w.UIVersion = 2
	}
	if len(w.DonationFlow) == 0 {
		w.DonationFlow = []string{"daf"}
	}
	if w.ButtonID == "" {
		w.ButtonID = "tgb-widget-button"
	}
	if w.ButtonText == "" {
		w.ButtonText = "DAF"
	}
	if w.ScriptID == "" {
		w.ScriptID = "tgb-widget-script"
	}

	if c.Cache.Addr == "" {
		c.Cache.Addr = "localhost:6379"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "donate:"
	}
	if c.Cache.CurrencyTTL == 0 {
		c.Cache.CurrencyTTL = time.Hour
	}
	if c.Cache.BrokersTTL == 0 {
		c.Cache.BrokersTTL = 24 * time.Hour
	}
	if c.Cache.StatsTTL == 0 {
		c.Cache.StatsTTL = 10 * time.Minute
	}
	if c.Cache.ClearBatch == 0 {
		c.Cache.ClearBatch = 100
	}

	if c.Flow.SessionTTL == 0 {
		c.Flow.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Flow.SearchCooldown == 0 {
		c.Flow.SearchCooldown = 250 * time.Millisecond
	}
	if c.Flow.SearchMinLength == 0 {
		c.Flow.SearchMinLength = 2
	}
	if c.Flow.DefaultCurrency == "" {
		c.Flow.DefaultCurrency = "LTC"
		c.Flow.DefaultCurrencyName = "Litecoin"
	}
	if c.Flow.SearchPageSize == 0 {
		c.Flow.SearchPageSize = 50
	}

	if c.WebSocket.ReadBufferSize == 0 {
		c.WebSocket.ReadBufferSize = 1024
	}
	if c.WebSocket.WriteBufferSize == 0 {
		c.WebSocket.WriteBufferSize = 1024
	}
	if c.WebSocket.PingPeriod == 0 {
		c.WebSocket.PingPeriod = 30 * time.Second
	}

	if c.LogSink.Level == "" {
		c.LogSink.Level = "warn"
	}
	if c.LogSink.BufferSize == 0 {
		c.LogSink.BufferSize = 256
	}
	return nil
}
