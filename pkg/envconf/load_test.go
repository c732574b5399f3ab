package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

type pgConf struct {
	DSN     string        `env:"ENVCONF_TEST_DSN"`
	MaxOpen int           `env:"ENVCONF_TEST_MAX_OPEN" default:"25"`
	Idle    time.Duration `env:"ENVCONF_TEST_IDLE" default:"30s"`
}

type appConf struct {
	Port     uint16     `env:"ENVCONF_TEST_PORT" default:"8080"`
	LogLevel slog.Level `env:"ENVCONF_TEST_LOG_LEVEL" default:"INFO"`
	Repair   bool       `env:"ENVCONF_TEST_REPAIR" default:"false"`
	Postgres pgConf
	Extra    *pgConf
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DSN", "postgres://u:p@db:5432/credit")
	t.Setenv("ENVCONF_TEST_MAX_OPEN", "7")
	t.Setenv("ENVCONF_TEST_LOG_LEVEL", "DEBUG")
	t.Setenv("ENVCONF_TEST_IDLE", "")

	cfg := new(appConf)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Fatalf("port: want 8080, got %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("log level: want DEBUG, got %v", cfg.LogLevel)
	}
	if cfg.Repair {
		t.Fatalf("repair: want false")
	}
	if cfg.Postgres.DSN != "postgres://u:p@db:5432/credit" {
		t.Fatalf("dsn: got %q", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxOpen != 7 {
		t.Fatalf("max open: want 7, got %d", cfg.Postgres.MaxOpen)
	}
	if cfg.Postgres.Idle != 30*time.Second {
		t.Fatalf("idle: empty value should fall back to default, got %v", cfg.Postgres.Idle)
	}
	if cfg.Extra == nil || cfg.Extra.MaxOpen != 7 {
		t.Fatalf("pointer struct not loaded: %+v", cfg.Extra)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cfg := new(pgConf)

	err := Load(cfg)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("ENVCONF_TEST_DSN", "x")
	t.Setenv("ENVCONF_TEST_MAX_OPEN", "many")

	err := Load(new(pgConf))
	if err == nil {
		t.Fatalf("want parse error, got nil")
	}
}

func TestLoad_RejectsNonPointer(t *testing.T) {
	t.Parallel()

	if err := Load(pgConf{}); err == nil {
		t.Fatalf("want error for non-pointer destination")
	}
	if err := Load(nil); err == nil {
		t.Fatalf("want error for nil destination")
	}
}
