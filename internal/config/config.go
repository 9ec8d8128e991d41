package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	NotifierLog      = "log"
	NotifierSendGrid = "sendgrid"
	NotifierQueue    = "queue"
)

type Config struct {
	Env  string
	Port int

	StoreDriver   string
	MongoURL      string
	MongoDatabase string
	DBURL         string

	JWTSecret string

	SendGridAPIKey string
	EmailFrom      string
	Notifier       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EmailQueueKey string

	OTelEnabled  bool
	OTelEndpoint string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	WorkerHealthPort   int
}

// Load reads a .env file when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: could not read .env", "err", err)
	}
	return fromEnv()
}

func fromEnv() Config {
	apiKey := getEnv("SENDGRID_API_KEY", "")

	defaultNotifier := NotifierLog
	if apiKey != "" {
		defaultNotifier = NotifierSendGrid
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 3000),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURL:      getEnv("MONGODB_URL", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "task-manager-api"),
		DBURL:         buildDBURL(),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),

		SendGridAPIKey: apiKey,
		EmailFrom:      getEnv("EMAIL_FROM", "no-reply@taskhub.local"),
		Notifier:       strings.ToLower(getEnv("NOTIFIER", defaultNotifier)),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		EmailQueueKey: getEnv("EMAIL_QUEUE_KEY", "taskhub:emails"),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_ENDPOINT", "localhost:4317"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 2<<20)),
		WorkerHealthPort:   getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "taskhub")
	pass := getEnv("DB_PASSWORD", "taskhub")
	name := getEnv("DB_NAME", "taskhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	num, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: invalid integer, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return num
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
