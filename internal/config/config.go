package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Mail providers understood by the notification layer.
const (
	MailProviderLog      = "log"
	MailProviderSendGrid = "sendgrid"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	NATSSubjectPrefix  string
	JWTSecret          string
	MailProvider       string
	SendGridAPIKey     string
	MailFrom           string
	MailFromName       string
	NotificationDedupe time.Duration
	RateLimitMax       int
	RateLimitWindow    time.Duration
	DefaultExamType    string
	CORSAllowOrigins   string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Mark Tracker API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.url", "sqlite:marktrack.db")
	v.SetDefault("nats.subject_prefix", "marks")
	v.SetDefault("mail.provider", MailProviderLog)
	v.SetDefault("mail.from", "no-reply@marktrack.local")
	v.SetDefault("mail.from_name", "Mark Tracker")
	v.SetDefault("notifications.dedupe_ttl", "24h")
	v.SetDefault("rate_limit.max", 120)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("exam.default_type", "Final")
	v.SetDefault("cors.allow_origins", "*")

	dedupe, err := parseDuration(v.GetString("notifications.dedupe_ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid notification dedupe ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		NATSSubjectPrefix:  strings.Trim(v.GetString("nats.subject_prefix"), "."),
		JWTSecret:          v.GetString("jwt.secret"),
		MailProvider:       strings.ToLower(strings.TrimSpace(v.GetString("mail.provider"))),
		SendGridAPIKey:     v.GetString("sendgrid.api_key"),
		MailFrom:           v.GetString("mail.from"),
		MailFromName:       v.GetString("mail.from_name"),
		NotificationDedupe: dedupe,
		RateLimitMax:       v.GetInt("rate_limit.max"),
		RateLimitWindow:    window,
		DefaultExamType:    v.GetString("exam.default_type"),
		CORSAllowOrigins:   strings.TrimSpace(v.GetString("cors.allow_origins")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.MailProvider {
	case MailProviderLog:
	case MailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return Config{}, fmt.Errorf("sendgrid api key must be provided when mail provider is sendgrid")
		}
	default:
		return Config{}, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 120
	}

	if cfg.DefaultExamType == "" {
		cfg.DefaultExamType = "Final"
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}

	return time.ParseDuration(raw)
}
