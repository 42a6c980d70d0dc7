package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "paike" {
		t.Errorf("App.Name = %s, expected paike", cfg.App.Name)
	}
	if cfg.App.Port != 7021 {
		t.Errorf("App.Port = %d, expected 7021", cfg.App.Port)
	}
	if cfg.Generator.DefaultTimeout != 300*time.Second {
		t.Errorf("Generator.DefaultTimeout = %v, expected 300s", cfg.Generator.DefaultTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled 默认应该开启")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("GENERATOR_ENABLE_REFINEMENT", "true")
	t.Setenv("API_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Port != 9000 {
		t.Errorf("App.Port = %d, expected 9000", cfg.App.Port)
	}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("APP_ENV=production 时应判定为生产环境")
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("Database.MaxOpenConns = %d, expected 50", cfg.Database.MaxOpenConns)
	}
	if !cfg.Generator.EnableRefinement {
		t.Error("GENERATOR_ENABLE_REFINEMENT=true 应该生效")
	}
	if cfg.API.Timeout != 45*time.Second {
		t.Errorf("API.Timeout = %v, expected 45s", cfg.API.Timeout)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("METRICS_ENABLED", "maybe")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// 非法值回落到默认值而不是报错
	if cfg.App.Port != 7021 {
		t.Errorf("App.Port = %d, expected 7021", cfg.App.Port)
	}
	if !cfg.Metrics.Enabled {
		t.Error("非法布尔值应回落到默认值 true")
	}
	if cfg.Database.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, expected 5m", cfg.Database.ConnMaxLifetime)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "paike",
		User:     "svc",
		Password: "secret",
		SSLMode:  "require",
	}

	expected := "host=db.internal port=5433 user=svc password=secret dbname=paike sslmode=require"
	if dsn := db.DSN(); dsn != expected {
		t.Errorf("DSN() = %s, expected %s", dsn, expected)
	}
}
