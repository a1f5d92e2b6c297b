package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/straitwatch/backend/models"
)

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "straitwatch",
		Password: "secret",
		Name:     "straitwatch",
		SSLMode:  "disable",
	}
	dsn := db.DSN()

	expected := "host=localhost port=5432 user=straitwatch password=secret dbname=straitwatch sslmode=disable"
	if dsn != expected {
		t.Errorf("DSN() = %q, want %q", dsn, expected)
	}
}

func TestDSNCustomValues(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		User:     "admin",
		Password: "p@ss",
		Name:     "mydb",
		SSLMode:  "require",
	}
	dsn := db.DSN()

	if !strings.Contains(dsn, "host=db.example.com") {
		t.Errorf("DSN missing host, got: %s", dsn)
	}
	if !strings.Contains(dsn, "port=5433") {
		t.Errorf("DSN missing port, got: %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("DSN missing sslmode, got: %s", dsn)
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("TEST_CONFIG_VAR")
	if got := getEnv("TEST_CONFIG_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want %q", got, "default")
	}

	os.Setenv("TEST_CONFIG_VAR", "custom")
	defer os.Unsetenv("TEST_CONFIG_VAR")
	if got := getEnv("TEST_CONFIG_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %q, want %q", got, "custom")
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Run("fallback when unset", func(t *testing.T) {
		os.Unsetenv("TEST_INT_VAR")
		got, err := getIntEnv("TEST_INT_VAR", 3001)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3001 {
			t.Errorf("getIntEnv() = %d, want %d", got, 3001)
		}
	})

	t.Run("parses valid int", func(t *testing.T) {
		os.Setenv("TEST_INT_VAR", "9090")
		defer os.Unsetenv("TEST_INT_VAR")
		got, err := getIntEnv("TEST_INT_VAR", 3001)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 9090 {
			t.Errorf("getIntEnv() = %d, want %d", got, 9090)
		}
	})

	t.Run("error on invalid int", func(t *testing.T) {
		os.Setenv("TEST_INT_VAR", "not_int")
		defer os.Unsetenv("TEST_INT_VAR")
		_, err := getIntEnv("TEST_INT_VAR", 3001)
		if err == nil {
			t.Error("expected error for invalid int value")
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
		"DB_NAME", "DB_SSLMODE", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
		"REDIS_DB", "NATS_PORT", "NATS_URL", "WEATHER_STATION",
	} {
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want 6379", cfg.Redis.Port)
	}
	if cfg.NATS.URL != "nats://localhost:4233" {
		t.Errorf("NATS.URL = %q, want %q", cfg.NATS.URL, "nats://localhost:4233")
	}
	if cfg.Weather.Station != "SN59800" {
		t.Errorf("Weather.Station = %q, want %q", cfg.Weather.Station, "SN59800")
	}
}

func TestLoadConfigCustom(t *testing.T) {
	os.Setenv("SERVER_PORT", "3000")
	os.Setenv("DB_HOST", "db.prod")
	os.Setenv("NATS_PORT", "4333")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("NATS_PORT")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.prod" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "db.prod")
	}
	if cfg.NATS.URL != "nats://localhost:4333" {
		t.Errorf("NATS.URL = %q, want %q", cfg.NATS.URL, "nats://localhost:4333")
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	os.Setenv("SERVER_PORT", "invalid")
	defer os.Unsetenv("SERVER_PORT")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for invalid SERVER_PORT")
	}
}

func TestDefaultEngine(t *testing.T) {
	e := DefaultEngine()

	if e.SpeedThreshold != 3.0 {
		t.Errorf("SpeedThreshold = %v, want 3.0", e.SpeedThreshold)
	}
	if e.DurationThreshold != 120*time.Minute {
		t.Errorf("DurationThreshold = %v, want 120m", e.DurationThreshold)
	}
	if e.LookaheadWindow != 48*time.Hour {
		t.Errorf("LookaheadWindow = %v, want 48h", e.LookaheadWindow)
	}
	if len(e.Zones) != 2 {
		t.Fatalf("Zones = %d, want 2", len(e.Zones))
	}

	east := e.Zone(models.ZoneEast)
	if east == nil || east.Center.Lon != 5.3 {
		t.Errorf("east zone misconfigured: %+v", east)
	}
	if e.Zone("nonexistent") != nil {
		t.Error("Zone() for unknown id should be nil")
	}

	if e.ExpectedDirection[models.ZoneEast] != models.DirectionEastToWest {
		t.Errorf("east zone expectation = %v", e.ExpectedDirection[models.ZoneEast])
	}
	if e.ExpectedDirection[models.ZoneWest] != models.DirectionWestToEast {
		t.Errorf("west zone expectation = %v", e.ExpectedDirection[models.ZoneWest])
	}
}
