package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              string
	DBHost            string
	DBPort            string
	DBName            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	FolderPath        string
	SessionTTL        time.Duration
	WorkerConcurrency int
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "5000"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "27017"),
		DBName:            getEnv("DB_DATABASE", "files_manager"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		FolderPath:        getEnv("FOLDER_PATH", "/tmp/files_manager"),
		SessionTTL:        getEnvDuration("SESSION_TTL_HOURS", 24*time.Hour),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
	}
}

// MongoURI builds the document store connection string from host, port
// and database name.
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%s/%s", c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if hours, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(hours * float64(time.Hour))
		}
	}
	return fallback
}
