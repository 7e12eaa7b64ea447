package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabaseDriver                string        `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	DatabaseDSN                   string        `mapstructure:"DATABASE_DSN"`
	DiscordClientID               string        `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string        `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string        `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	FrontendURL                   string        `mapstructure:"FRONTEND_URL"`
	OwnerDiscordID                string        `mapstructure:"OWNER_DISCORD_ID"`
	EnableCORS                    bool          `mapstructure:"ENABLE_CORS"`
	LogLevel                      string        `mapstructure:"LOG_LEVEL"`
	LogFormat                     string        `mapstructure:"LOG_FORMAT"`
	SMTPHost                      string        `mapstructure:"SMTP_HOST"`
	SMTPPort                      int           `mapstructure:"SMTP_PORT"`
	SMTPUsername                  string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword                  string        `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom                      string        `mapstructure:"SMTP_FROM"`
	BookingMailTo                 string        `mapstructure:"BOOKING_MAIL_TO"`
	KafkaBrokers                  []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaBookingTopic             string        `mapstructure:"KAFKA_BOOKING_TOPIC"`
	RedisAddr                     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                 string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                       int           `mapstructure:"REDIS_DB"`
	IdempotencyTTL                time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	AnalyticsEndpoint             string        `mapstructure:"ANALYTICS_ENDPOINT"`
	AnalyticsWebsiteID            string        `mapstructure:"ANALYTICS_WEBSITE_ID"`
	AnalyticsTimeout              time.Duration `mapstructure:"ANALYTICS_TIMEOUT"`
}

// MinJWTSecretLength is the shortest accepted session signing key, in bytes.
const MinJWTSecretLength = 32

// Validate reports settings the service cannot safely start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}
	return nil
}

func LoadConfig() *Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "eventika.db")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:3000/admin/calendar")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("BOOKING_MAIL_TO", "mario@eventika.se")
	viper.SetDefault("KAFKA_BOOKING_TOPIC", "booking-requests")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("ANALYTICS_TIMEOUT", "5s")

	viper.BindEnv("DATABASE_DSN")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("OWNER_DISCORD_ID")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_USERNAME")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("SMTP_FROM")
	viper.BindEnv("KAFKA_BROKERS")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("ANALYTICS_ENDPOINT")
	viper.BindEnv("ANALYTICS_WEBSITE_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return &config
}
