package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"golang-maintenance-work-order/pkg/postgres"
	"golang-maintenance-work-order/pkg/redis"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Database    postgres.Config   `mapstructure:"database"`
	Redis       redis.Config      `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Port string
	Env  string
}

type MaintenanceConfig struct {
	// MinConsumptionQty is the reporting threshold for consumed materials;
	// entries below it are dropped rather than recorded as zero.
	MinConsumptionQty float64
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

type RateLimitConfig struct {
	MaxGlobalRequestPerSecond int
	MaxClientRequestPerSecond int
	CleanupInterval           time.Duration
	ExpireDuration            time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Failed to read config file .env config try read from environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port: viper.GetString("PORT"),
			Env:  viper.GetString("ENV"),
		},
		Maintenance: MaintenanceConfig{
			MinConsumptionQty: viper.GetFloat64("MIN_CONSUMPTION_QTY"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Telegram: TelegramConfig{
			BotToken: viper.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID:   viper.GetInt64("TELEGRAM_CHAT_ID"),
		},
		RateLimit: RateLimitConfig{
			MaxGlobalRequestPerSecond: viper.GetInt("RATE_LIMIT_MAX_GLOBAL_REQUEST_PER_SECOND"),
			MaxClientRequestPerSecond: viper.GetInt("RATE_LIMIT_MAX_CLIENT_REQUEST_PER_SECOND"),
			CleanupInterval:           viper.GetDuration("RATE_LIMIT_CLEANUP_INTERVAL"),
			ExpireDuration:            viper.GetDuration("RATE_LIMIT_EXPIRE_DURATION"),
		},
		Database: postgres.Config{
			Host:            viper.GetString("DATABASE_HOST"),
			Port:            viper.GetInt("DATABASE_PORT"),
			User:            viper.GetString("DATABASE_USER"),
			Password:        viper.GetString("DATABASE_PASSWORD"),
			DBName:          viper.GetString("DATABASE_NAME"),
			SSLMode:         viper.GetString("DATABASE_SSL_MODE"),
			TimeZone:        viper.GetString("DATABASE_TIME_ZONE"),
			MaxIdleConns:    viper.GetInt("DATABASE_MAX_IDLE_CONNS"),
			MaxOpenConns:    viper.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnMaxLifetime: viper.GetString("DATABASE_CONN_MAX_LIFETIME"),
			LogLevel:        viper.GetString("DATABASE_LOG_LEVEL"),
		},
		Redis: redis.Config{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
	}

	applyDefaults(config)

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Maintenance.MinConsumptionQty <= 0 {
		config.Maintenance.MinConsumptionQty = 0.01
	}
	if config.RateLimit.MaxGlobalRequestPerSecond <= 0 {
		config.RateLimit.MaxGlobalRequestPerSecond = 50
	}
	if config.RateLimit.MaxClientRequestPerSecond <= 0 {
		config.RateLimit.MaxClientRequestPerSecond = 5
	}
	if config.RateLimit.CleanupInterval <= 0 {
		config.RateLimit.CleanupInterval = 5 * time.Minute
	}
	if config.RateLimit.ExpireDuration <= 0 {
		config.RateLimit.ExpireDuration = 30 * time.Minute
	}
}
