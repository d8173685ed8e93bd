package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// MercadoPago holds the gateway credentials and checkout settings. Redirect
// and webhook URLs are derived from BaseURL plus fixed paths at call time.
type MercadoPago struct {
	AccessToken string
	PublicKey   string
	BaseURL     string
	Currency    string
	Locale      string
}

type Config struct {
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       string
	AppPort      string
	AppEnv       string
	RedisAddr    string
	KafkaBrokers []string
	JWTSecret    string
	MercadoPago  MercadoPago
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:       os.Getenv("DB_HOST"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBPort:       os.Getenv("DB_PORT"),
		AppPort:      getenv("APP_PORT", "8080"),
		AppEnv:       os.Getenv("APP_ENV"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		JWTSecret:    os.Getenv("SECRET_KEY"),
		MercadoPago: MercadoPago{
			AccessToken: os.Getenv("MP_ACCESS_TOKEN"),
			PublicKey:   os.Getenv("MP_PUBLIC_KEY"),
			BaseURL:     getenv("BASE_URL", "http://localhost:3000"),
			Currency:    getenv("MP_CURRENCY", "ARS"),
			Locale:      getenv("MP_LOCALE", "es-AR"),
		},
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// Validate reports whether the gateway section is usable. Preference creation
// must fail fast on a missing access token instead of attempting the call.
func (m MercadoPago) Validate() error {
	if m.AccessToken == "" {
		return errors.New("MP_ACCESS_TOKEN is not configured")
	}
	if m.BaseURL == "" {
		return errors.New("BASE_URL is not configured")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
