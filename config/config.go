package config

import (
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global PostgreSQL database connection.
var DB *gorm.DB

// Rdb is the global Redis client. Nil when Redis is unavailable.
var Rdb *redis.Client

// Log is the application logger. InitLogger applies the env-driven
// configuration; until then this is a plain info-level logger.
var Log = logrus.New()

// Ctx is the context for Redis operations.
var Ctx = context.Background()

// InitLogger configures the logger from the environment. Call after the .env
// file has been loaded so LOG_LEVEL and ENVIRONMENT set there take effect.
func InitLogger() {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// InitDB connects to PostgreSQL. Connection failure is fatal: the service
// cannot run without its store.
func InitDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		GetEnv("DB_HOST", "localhost"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		GetEnv("DB_NAME", "crypto_predictor"),
		GetEnv("DB_PORT", "5432"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		Log.WithError(err).Fatal("Failed to connect to the database")
	}

	Log.Info("Database connection established")
}

// InitRedis initializes the Redis connection used by the trending cache.
func InitRedis() {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Rdb.Ping(Ctx).Err(); err != nil {
		Log.WithError(err).Warn("Redis unavailable, trending cache disabled")
		Rdb = nil
	}
}

// GetEnv returns the value of an environment variable or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
