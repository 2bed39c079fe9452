package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DatabaseConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("DB_HOST", "db.internal")
	os.Setenv("DB_NAME", "scheduler_test")
	defer func() {
		os.Unsetenv("DB_HOST")
		os.Unsetenv("DB_NAME")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify database config
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "scheduler_test", cfg.Database.Database)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("DB_HOST")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("JWT_TTL_MINUTES")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "vaccine_scheduler", cfg.Database.Database)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "vaccine_scheduler",
		SSLMode:  "disable",
	}

	dsn := cfg.DatabaseDSN()
	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=vaccine_scheduler sslmode=disable", dsn)
}
