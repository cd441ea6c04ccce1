package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Gateway   GatewayConfig
	Card      CardConfig
	Redis     RedisConfig
	MQ        MQConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

// GatewayConfig holds the payment gateway credentials. KeyID is public and is
// handed to the checkout client; KeySecret signs payments and never leaves the server.
type GatewayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

// CardConfig drives direct card charges. ReturnURL is where the payer lands
// after a 3-D Secure challenge.
type CardConfig struct {
	SecretKey string
	Currency  string
	ReturnURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

type MQConfig struct {
	URL      string
	Exchange string
}

type ReconcileConfig struct {
	Interval time.Duration
	Lookback time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "labor-market")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1")
	viper.SetDefault("PAYMENT_CURRENCY", "INR")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 15)
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("APP_URL", "http://localhost:3000")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_LOCK_TTL_SECONDS", 30)
	viper.SetDefault("AMQP_EXCHANGE", "labor-market.events")
	viper.SetDefault("RECONCILE_INTERVAL_MINUTES", 15)
	viper.SetDefault("RECONCILE_LOOKBACK_HOURS", 24)

	// .env is optional, the environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Gateway: GatewayConfig{
			KeyID:     viper.GetString("RAZORPAY_KEY_ID"),
			KeySecret: viper.GetString("RAZORPAY_KEY_SECRET"),
			BaseURL:   viper.GetString("RAZORPAY_BASE_URL"),
			Currency:  viper.GetString("PAYMENT_CURRENCY"),
			Timeout:   time.Duration(viper.GetInt("GATEWAY_TIMEOUT_SECONDS")) * time.Second,
		},
		Card: CardConfig{
			SecretKey: viper.GetString("STRIPE_SECRET_KEY"),
			Currency:  viper.GetString("STRIPE_CURRENCY"),
			ReturnURL: strings.TrimRight(viper.GetString("APP_URL"), "/") + "/dashboard",
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			LockTTL:  time.Duration(viper.GetInt("PAYMENT_LOCK_TTL_SECONDS")) * time.Second,
		},
		MQ: MQConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
		Reconcile: ReconcileConfig{
			Interval: time.Duration(viper.GetInt("RECONCILE_INTERVAL_MINUTES")) * time.Minute,
			Lookback: time.Duration(viper.GetInt("RECONCILE_LOOKBACK_HOURS")) * time.Hour,
		},
	}

	return config, nil
}

// Configured reports whether both gateway credentials are present.
func (g GatewayConfig) Configured() bool {
	return g.KeyID != "" && g.KeySecret != ""
}

func (c CardConfig) Configured() bool {
	return c.SecretKey != ""
}
