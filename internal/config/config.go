package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Backend     BackendConfig
	Printer     PrinterConfig
	Receipt     ReceiptConfig
	MobilePrint MobilePrintConfig
	Session     SessionConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

type AppConfig struct {
	Name          string
	Env           string
	Port          string
	Debug         bool
	PublicBaseURL string
}

// BackendConfig points at the REST API that owns all persistent data.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PrinterConfig struct {
	Type       string
	SpoolerURL string
	Name       string
	USBPath    string
	Address    string
	Timeout    time.Duration
}

type ReceiptConfig struct {
	ShopName     string
	AddressLines []string
	Footer       string
	Width        int
	Timezone     string
}

type MobilePrintConfig struct {
	Scheme string
}

type SessionConfig struct {
	Store      string // memory or redis
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig is used only for the print-job journal. An empty Host keeps
// the journal in memory.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
	File   string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	v.SetDefault("APP_NAME", "pos-gateway")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_PUBLIC_BASE_URL", "https://bumisubur-fe.vercel.app")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8888")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("PRINTER_TYPE", "spooler")
	v.SetDefault("PRINTER_SPOOLER_URL", "http://localhost:5000")
	v.SetDefault("PRINTER_NAME", "POS-80")
	v.SetDefault("PRINTER_TIMEOUT", "10s")
	v.SetDefault("RECEIPT_SHOP_NAME", "UD. BUMI SUBUR")
	v.SetDefault("RECEIPT_ADDRESS", "JL Jenderal Ahmad Yani, Bugis, Tanjung|Redeb, Berau, 77312, Indonesia")
	v.SetDefault("RECEIPT_FOOTER", "Terima kasih atas kunjungan Anda!")
	v.SetDefault("RECEIPT_WIDTH", 32)
	v.SetDefault("RECEIPT_TIMEZONE", "Asia/Makassar")
	v.SetDefault("MOBILE_PRINT_SCHEME", "my.bluetoothprint.scheme")
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "bs_token")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "pos_gateway")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Makassar")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LOG_FILE", "logs/gateway.log")
	v.SetDefault("METRICS_ENABLED", true)

	return &Config{
		App: AppConfig{
			Name:          v.GetString("APP_NAME"),
			Env:           v.GetString("APP_ENV"),
			Port:          v.GetString("APP_PORT"),
			Debug:         v.GetBool("APP_DEBUG"),
			PublicBaseURL: strings.TrimRight(v.GetString("APP_PUBLIC_BASE_URL"), "/"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Printer: PrinterConfig{
			Type:       v.GetString("PRINTER_TYPE"),
			SpoolerURL: v.GetString("PRINTER_SPOOLER_URL"),
			Name:       v.GetString("PRINTER_NAME"),
			USBPath:    v.GetString("PRINTER_USB_PATH"),
			Address:    v.GetString("PRINTER_ADDRESS"),
			Timeout:    v.GetDuration("PRINTER_TIMEOUT"),
		},
		Receipt: ReceiptConfig{
			ShopName:     v.GetString("RECEIPT_SHOP_NAME"),
			AddressLines: splitList(v.GetString("RECEIPT_ADDRESS"), "|"),
			Footer:       v.GetString("RECEIPT_FOOTER"),
			Width:        v.GetInt("RECEIPT_WIDTH"),
			Timezone:     v.GetString("RECEIPT_TIMEZONE"),
		},
		MobilePrint: MobilePrintConfig{
			Scheme: v.GetString("MOBILE_PRINT_SCHEME"),
		},
		Session: SessionConfig{
			Store:      v.GetString("SESSION_STORE"),
			TTL:        v.GetDuration("SESSION_TTL"),
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"), ","),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS"), ","),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS"), ","),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
			File:   v.GetString("LOG_FILE"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}

// Validate reports settings the gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT must be positive"))
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		errs = append(errs, errors.New("SESSION_STORE must be memory or redis"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	return errors.Join(errs...)
}

// JournalEnabled reports whether print jobs are persisted to Postgres.
func (c *DatabaseConfig) JournalEnabled() bool {
	return c.Host != ""
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Location resolves the receipt timezone, falling back to the process local
// zone when the name is unknown.
func (c *ReceiptConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
