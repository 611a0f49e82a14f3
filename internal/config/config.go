package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Auth       AuthConfig       `validate:"required"`
	Business   BusinessConfig   `validate:"required"`
	PDF        PDFConfig        `mapstructure:"pdf" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Pyroscope  PyroscopeConfig  `mapstructure:"pyroscope"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api aws_lambda_api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
	// AllowedOrigins lists the browser origins allowed to call the API with
	// credentials. Empty allows any origin without credentials.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `validate:"required"`
	SSLMode                string `validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
	// ConnectRetries bounds the exponential backoff used when the database
	// is not reachable at startup.
	ConnectRetries uint64 `mapstructure:"connect_retries" default:"5"`
}

// AuthConfig configures how the authenticated principal of a request is
// resolved. The supabase provider signs users in with email and password and
// validates access tokens against Supabase; the jwt provider only validates
// HMAC signed tokens locally with Secret.
type AuthConfig struct {
	Provider types.AuthProvider `validate:"required,oneof=supabase jwt"`
	Secret   string             `validate:"required"`
	Supabase SupabaseConfig     `mapstructure:"supabase"`

	CookieName      string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	TokenCacheTTL   time.Duration `mapstructure:"token_cache_ttl"`
	LoginRatePerMin int           `mapstructure:"login_rate_per_min"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

// BusinessConfig holds the display identity printed on invoices
type BusinessConfig struct {
	Name           string `validate:"required"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Footer         string
}

type PDFConfig struct {
	Renderer    types.PDFRenderer `validate:"required,oneof=fpdf typst"`
	TypstBinary string            `mapstructure:"typst_binary"`
	TemplateDir string            `mapstructure:"template_dir"`
	FontDir     string            `mapstructure:"font_dir"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type PyroscopeConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServerAddress   string            `mapstructure:"server_address"`
	ApplicationName string            `mapstructure:"application_name"`
	BasicAuthUser   string            `mapstructure:"basic_auth_user"`
	BasicAuthPass   string            `mapstructure:"basic_auth_password"`
	SampleRate      uint32            `mapstructure:"sample_rate"`
	DisableGCRuns   bool              `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string          `mapstructure:"profile_types"`
	Tags            map[string]string `mapstructure:"tags"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mkrhub")

	v.SetEnvPrefix("MKRHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("postgres.connect_retries", 5)
	v.SetDefault("auth.provider", types.AuthProviderSupabase)
	v.SetDefault("auth.cookie_name", "mkrhub_session")
	v.SetDefault("auth.token_cache_ttl", 5*time.Minute)
	v.SetDefault("auth.login_rate_per_min", 10)
	v.SetDefault("business.name", "MKR Control Hub")
	v.SetDefault("business.currency_symbol", types.DEFAULT_CURRENCY_SYMBOL)
	v.SetDefault("pdf.renderer", types.PDFRendererFPDF)
	v.SetDefault("pdf.typst_binary", "typst")
	v.SetDefault("pdf.template_dir", "internal/typst/templates")
	v.SetDefault("pdf.font_dir", "assets/fonts")
	v.SetDefault("cache.enabled", true)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Auth.Provider == types.AuthProviderSupabase && c.Auth.Supabase.BaseURL == "" {
		return errors.New("auth.supabase.base_url is required for the supabase provider")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "mkrhub",
			DBName:         "mkrhub",
			SSLMode:        "disable",
			MaxOpenConns:   10,
			MaxIdleConns:   5,
			ConnectRetries: 5,
		},
		Auth: AuthConfig{
			Provider:      types.AuthProviderJWT,
			Secret:        "local-development-secret",
			CookieName:    "mkrhub_session",
			TokenCacheTTL: 5 * time.Minute,
		},
		Business: BusinessConfig{
			Name:           "MKR Control Hub",
			CurrencySymbol: types.DEFAULT_CURRENCY_SYMBOL,
		},
		PDF: PDFConfig{
			Renderer:    types.PDFRendererFPDF,
			TypstBinary: "typst",
			TemplateDir: "internal/typst/templates",
			FontDir:     "assets/fonts",
		},
		Cache: CacheConfig{Enabled: true},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetFooter returns the footer line printed under every invoice document
func (c BusinessConfig) GetFooter() string {
	if c.Footer != "" {
		return c.Footer
	}
	return "Generated by " + c.Name + " • Please keep this invoice for your records."
}

// GetCurrencySymbol returns the configured display symbol
func (c BusinessConfig) GetCurrencySymbol() string {
	if c.CurrencySymbol == "" {
		return types.DEFAULT_CURRENCY_SYMBOL
	}
	return c.CurrencySymbol
}
