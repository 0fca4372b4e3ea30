package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

// writeConfig writes a YAML config to a temp dir and points RADIOLOAN_CONFIG at it.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("RADIOLOAN_CONFIG", configPath)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring working directory: %v", err)
		}
	})
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("RADIOLOAN_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when the SQLite path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	writeConfig(t, `
organisation:
  id: test-org

database:
  driver: sqlite3
  path: ""

logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_UnsupportedDriver verifies run rejects unknown database drivers.
func TestRun_UnsupportedDriver(t *testing.T) {
	writeConfig(t, `
organisation:
  id: test-org

database:
  driver: oracle
  dsn: "oracle://localhost"
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with an unsupported driver")
	}
}

// TestRun_StartupAndShutdown runs the full service on SQLite with MQTT and
// InfluxDB disabled, then shuts it down through the context.
func TestRun_StartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	writeConfig(t, `
organisation:
  id: test-org

database:
  driver: sqlite3
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18089
`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_InvalidTracingConfig verifies run rejects an out-of-range sample ratio.
func TestRun_InvalidTracingConfig(t *testing.T) {
	writeConfig(t, `
organisation:
  id: test-org

database:
  driver: sqlite3
  path: "`+filepath.Join(t.TempDir(), "test.db")+`"

tracing:
  enabled: true
  endpoint: "127.0.0.1:4317"
  sample_ratio: 2
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with tracing.sample_ratio above 1")
	}
}

// TestRun_StartupWithTracing runs the service with trace export enabled. The
// OTLP exporter connects lazily, so no collector needs to be listening.
func TestRun_StartupWithTracing(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	writeConfig(t, `
organisation:
  id: test-org
  name: Test Pool

database:
  driver: sqlite3
  path: "`+filepath.Join(t.TempDir(), "test.db")+`"

logging:
  level: error

api:
  host: "127.0.0.1"
  port: 18090

tracing:
  enabled: true
  endpoint: "127.0.0.1:4317"
  insecure: true
  sample_ratio: 0.5
`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("RADIOLOAN_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("RADIOLOAN_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestLoadDotEnv_Missing verifies a missing .env file is not an error.
func TestLoadDotEnv_Missing(t *testing.T) {
	chdir(t, t.TempDir())

	if err := loadDotEnv(); err != nil {
		t.Errorf("loadDotEnv() error = %v, want nil", err)
	}
}

// TestLoadDotEnv_SetsVariables verifies values from .env reach the environment
// without overriding variables that are already set.
func TestLoadDotEnv_SetsVariables(t *testing.T) {
	dir := t.TempDir()
	content := "RADIOLOAN_TEST_DOTENV=from-file\nRADIOLOAN_TEST_PRESET=from-file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	chdir(t, dir)
	t.Setenv("RADIOLOAN_TEST_DOTENV", "")
	os.Unsetenv("RADIOLOAN_TEST_DOTENV")
	t.Setenv("RADIOLOAN_TEST_PRESET", "from-env")

	if err := loadDotEnv(); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("RADIOLOAN_TEST_DOTENV"); got != "from-file" {
		t.Errorf("RADIOLOAN_TEST_DOTENV = %q, want from-file", got)
	}
	if got := os.Getenv("RADIOLOAN_TEST_PRESET"); got != "from-env" {
		t.Errorf("RADIOLOAN_TEST_PRESET = %q, want from-env", got)
	}
}
