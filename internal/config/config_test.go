package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Store: StoreConfig{Dimensions: 1024, Metric: "cosine"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MemoryDriverNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memory"
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory driver must not require addrs: %v", err)
	}
}

func TestValidate_Dimensions(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Dimensions = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing dimensions")
	}
}

func TestValidate_Metric(t *testing.T) {
	for _, m := range []string{"cosine", "l2", "dot"} {
		cfg := validConfig()
		cfg.Store.Metric = m
		if err := cfg.Validate(); err != nil {
			t.Errorf("metric %q should be valid: %v", m, err)
		}
	}

	cfg := validConfig()
	cfg.Store.Metric = "euclidean"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestValidate_FilterFields(t *testing.T) {
	cfg := validConfig()
	cfg.Store.FilterFields = []FilterField{{Path: "category", Type: "tag"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Store.FilterFields = []FilterField{{Path: "", Type: "tag"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty filter field path")
	}

	cfg.Store.FilterFields = []FilterField{{Path: "year", Type: "date"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown filter field type")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected driver redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.KeyPrefix != "lexivec:" {
		t.Errorf("expected KeyPrefix='lexivec:', got %q", cfg.Database.KeyPrefix)
	}
	if cfg.Store.Metric != "cosine" {
		t.Errorf("expected metric cosine, got %q", cfg.Store.Metric)
	}
	if cfg.Store.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Store.MaxBatchSize)
	}
	if cfg.Store.OperationTimeoutSec != 30 {
		t.Errorf("expected OperationTimeoutSec=30, got %d", cfg.Store.OperationTimeoutSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: "memory", KeyPrefix: "custom:", ReadinessTimeout: 15},
		Store:    StoreConfig{Metric: "l2", MaxBatchSize: 50, OperationTimeoutSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.Database.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Database.KeyPrefix)
	}
	if cfg.Store.Metric != "l2" {
		t.Errorf("expected metric l2, got %q", cfg.Store.Metric)
	}
	if cfg.Store.MaxBatchSize != 50 {
		t.Errorf("expected MaxBatchSize=50, got %d", cfg.Store.MaxBatchSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEXIVEC_TEST_KEY", "secret")

	in := []byte("api_key: ${LEXIVEC_TEST_KEY}\nbase_url: ${LEXIVEC_TEST_URL:-https://default}")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nbase_url: https://default" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
