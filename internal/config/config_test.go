package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "STORE_DRIVER", "MONGO_URI", "DB_NAME", "BADGER_DIR", "STORE_TIMEOUT",
		"STORAGE_DRIVER", "AWS_REGION", "S3_BUCKET_NAME", "UPLOAD_DIR", "PUBLIC_BASE_URL", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "crm", cfg.DBName)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, StorageS3, cfg.StorageDriver)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
}

func TestFromEnvInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "-3")
	assert.Equal(t, 5*time.Second, FromEnv().StoreTimeout)

	t.Setenv("STORE_TIMEOUT", "12")
	assert.Equal(t, 12*time.Second, FromEnv().StoreTimeout)
}

func TestValidateRequiresSecretRegionAndBucket(t *testing.T) {
	cfg := Config{StoreDriver: StoreMongo, StorageDriver: StorageS3}

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "MONGO_URI", "AWS_REGION", "S3_BUCKET_NAME"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidateBadgerLocal(t *testing.T) {
	cfg := Config{
		StoreDriver:   StoreBadger,
		StorageDriver: StorageLocal,
		UploadDir:     "./public",
		JWTSecret:     "secret",
	}
	assert.NoError(t, cfg.Validate())
}

func TestValidateUnknownDrivers(t *testing.T) {
	cfg := Config{StoreDriver: "dynamo", StorageDriver: "gcs", JWTSecret: "secret"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORE_DRIVER "dynamo"`)
	assert.Contains(t, err.Error(), `unknown STORAGE_DRIVER "gcs"`)
}
