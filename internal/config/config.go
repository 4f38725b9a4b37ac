// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Pacing   PacingConfig
	TradeAPI TradeAPIConfig
	Sync     SyncConfig
	Archive  ArchiveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	TotalsTTLSeconds int
}

// PacingConfig carries the knobs for the pacing calculator. The default
// targets and business-day counts are the documented degradation values used
// when no target or override is configured for a period.
type PacingConfig struct {
	BusinessWeek         string // "mon-fri" or "mon-sat"
	GoodThreshold        int
	WarningThreshold     int
	HigherIsBetter       bool
	DefaultMonthlyTarget float64
	DefaultBusinessDays  int
}

type TradeAPIConfig struct {
	BaseURL        string
	AuthURL        string
	ClientID       string
	ClientSecret   string
	TenantID       string
	AppKey         string
	TimeoutSeconds int
}

type SyncConfig struct {
	IntervalSeconds int
	Port            string
}

type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "huddle")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TOTALS_TTL_SECONDS", 300)
		viper.SetDefault("PACING_BUSINESS_WEEK", "mon-fri")
		viper.SetDefault("PACING_GOOD_THRESHOLD", 100)
		viper.SetDefault("PACING_WARNING_THRESHOLD", 90)
		viper.SetDefault("PACING_HIGHER_IS_BETTER", true)
		viper.SetDefault("PACING_DEFAULT_MONTHLY_TARGET", 0)
		viper.SetDefault("PACING_DEFAULT_BUSINESS_DAYS", 22)
		viper.SetDefault("TRADE_API_BASE_URL", "")
		viper.SetDefault("TRADE_API_AUTH_URL", "")
		viper.SetDefault("TRADE_API_TIMEOUT_SECONDS", 30)
		viper.SetDefault("SYNC_INTERVAL_SECONDS", 300)
		viper.SetDefault("SYNC_PORT", "8081")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				TotalsTTLSeconds: viper.GetInt("CACHE_TOTALS_TTL_SECONDS"),
			},
			Pacing: PacingConfig{
				BusinessWeek:         viper.GetString("PACING_BUSINESS_WEEK"),
				GoodThreshold:        viper.GetInt("PACING_GOOD_THRESHOLD"),
				WarningThreshold:     viper.GetInt("PACING_WARNING_THRESHOLD"),
				HigherIsBetter:       viper.GetBool("PACING_HIGHER_IS_BETTER"),
				DefaultMonthlyTarget: viper.GetFloat64("PACING_DEFAULT_MONTHLY_TARGET"),
				DefaultBusinessDays:  viper.GetInt("PACING_DEFAULT_BUSINESS_DAYS"),
			},
			TradeAPI: TradeAPIConfig{
				BaseURL:        viper.GetString("TRADE_API_BASE_URL"),
				AuthURL:        viper.GetString("TRADE_API_AUTH_URL"),
				ClientID:       viper.GetString("TRADE_API_CLIENT_ID"),
				ClientSecret:   viper.GetString("TRADE_API_CLIENT_SECRET"),
				TenantID:       viper.GetString("TRADE_API_TENANT_ID"),
				AppKey:         viper.GetString("TRADE_API_APP_KEY"),
				TimeoutSeconds: viper.GetInt("TRADE_API_TIMEOUT_SECONDS"),
			},
			Sync: SyncConfig{
				IntervalSeconds: viper.GetInt("SYNC_INTERVAL_SECONDS"),
				Port:            viper.GetString("SYNC_PORT"),
			},
			Archive: ArchiveConfig{
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				Region:    viper.GetString("ARCHIVE_REGION"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
		}
	})

	return instance
}
