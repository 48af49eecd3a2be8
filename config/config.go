package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Payment  PaymentConfig  `yaml:"payment"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Auth     AuthConfig     `yaml:"auth"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	PendingTTLMinutes         int `yaml:"pending_ttl_minutes"`
	PropertiesCacheTTLSeconds int `yaml:"properties_cache_ttl_seconds"`
	DatesCacheTTLSeconds      int `yaml:"dates_cache_ttl_seconds"`
	LockTTLSeconds            int `yaml:"lock_ttl_seconds"`
	OpTimeoutSeconds          int `yaml:"op_timeout_seconds"`
}

func (b BookingConfig) PendingTTL() time.Duration {
	return time.Duration(b.PendingTTLMinutes) * time.Minute
}

func (b BookingConfig) PropertiesCacheTTL() time.Duration {
	return time.Duration(b.PropertiesCacheTTLSeconds) * time.Second
}

func (b BookingConfig) DatesCacheTTL() time.Duration {
	return time.Duration(b.DatesCacheTTLSeconds) * time.Second
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) OpTimeout() time.Duration {
	return time.Duration(b.OpTimeoutSeconds) * time.Second
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
	ReconcileMinutes       int `yaml:"reconcile_minutes"`
}

// PaymentConfig selects the gateway by Provider ("paystack" or "stripe").
type PaymentConfig struct {
	Provider            string `yaml:"provider"`
	PaystackSecretKey   string `yaml:"paystack_secret_key"`
	PaystackBaseURL     string `yaml:"paystack_base_url"`
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
}

type SMTPConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

type AuthConfig struct {
	AdminUsername     string `yaml:"admin_username"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	JWTSecret         string `yaml:"jwt_secret"`
	TokenTTLMinutes   int    `yaml:"token_ttl_minutes"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"DATABASE_PASSWORD":     &c.Database.Password,
		"REDIS_PASSWORD":        &c.Redis.Password,
		"PAYSTACK_SECRET_KEY":   &c.Payment.PaystackSecretKey,
		"STRIPE_SECRET_KEY":     &c.Payment.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": &c.Payment.StripeWebhookSecret,
		"SMTP_PASSWORD":         &c.SMTP.Password,
		"JWT_SECRET":            &c.Auth.JWTSecret,
		"ADMIN_PASSWORD_HASH":   &c.Auth.AdminPasswordHash,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Payment.Provider == "" {
		c.Payment.Provider = "paystack"
	}
	if c.Booking.PendingTTLMinutes == 0 {
		c.Booking.PendingTTLMinutes = 60
	}
	if c.Booking.PropertiesCacheTTLSeconds == 0 {
		c.Booking.PropertiesCacheTTLSeconds = 60
	}
	if c.Booking.DatesCacheTTLSeconds == 0 {
		c.Booking.DatesCacheTTLSeconds = 300
	}
	if c.Booking.LockTTLSeconds == 0 {
		c.Booking.LockTTLSeconds = 30
	}
	if c.Booking.OpTimeoutSeconds == 0 {
		c.Booking.OpTimeoutSeconds = 5
	}
	if c.Worker.ExpirationSweepMinutes == 0 {
		c.Worker.ExpirationSweepMinutes = 5
	}
	if c.Worker.ReconcileMinutes == 0 {
		c.Worker.ReconcileMinutes = 10
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 12 * 60
	}
}
