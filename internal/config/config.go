package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreBadger = "badger"

	StorageS3    = "s3"
	StorageLocal = "local"
)

type Config struct {
	Port          string
	StoreDriver   string
	MongoURI      string
	DBName        string
	BadgerDir     string
	StoreTimeout  time.Duration
	StorageDriver string
	AWSRegion     string
	S3Bucket      string
	UploadDir     string
	PublicBaseURL string
	JWTSecret     string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] [INFO] .env not loaded:", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() Config {
	port := getEnvOrDefault("PORT", "8080")
	return Config{
		Port:          port,
		StoreDriver:   strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnvOrDefault("MONGO_URI", ""),
		DBName:        getEnvOrDefault("DB_NAME", "crm"),
		BadgerDir:     getEnvOrDefault("BADGER_DIR", ""),
		StoreTimeout:  getDurationEnv("STORE_TIMEOUT", 5, time.Second),
		StorageDriver: strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StorageS3)),
		AWSRegion:     getEnvOrDefault("AWS_REGION", ""),
		S3Bucket:      getEnvOrDefault("S3_BUCKET_NAME", ""),
		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./public"),
		PublicBaseURL: strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", ""),
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, missing("JWT_SECRET"))
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, missing("MONGO_URI"))
		}
	case StoreBadger:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.StorageDriver {
	case StorageS3:
		if c.AWSRegion == "" {
			errs = append(errs, missing("AWS_REGION"))
		}
		if c.S3Bucket == "" {
			errs = append(errs, missing("S3_BUCKET_NAME"))
		}
	case StorageLocal:
		if c.UploadDir == "" {
			errs = append(errs, missing("UPLOAD_DIR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	return errors.Join(errs...)
}

func missing(key string) error {
	return fmt.Errorf("ENV %s is required", key)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
