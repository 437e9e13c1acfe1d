package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ADDR", "ENV", "POOL_ENABLED", "POOL_IDLE_TIMEOUT_SEC", "POOL_WARM_ORIGINS"} {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Addr)
	}
	if !cfg.PoolEnabled {
		t.Error("expected pool enabled by default")
	}
	if cfg.PoolIdleTimeout <= 0 {
		t.Error("expected a positive default idle timeout")
	}
	if len(cfg.WarmOrigins) != 0 {
		t.Errorf("expected no warm origins by default, got %v", cfg.WarmOrigins)
	}
}

func TestLoadZeroIdleTimeoutDisablesExpiry(t *testing.T) {
	os.Setenv("POOL_IDLE_TIMEOUT_SEC", "0")
	defer os.Unsetenv("POOL_IDLE_TIMEOUT_SEC")

	cfg := Load()
	if cfg.PoolIdleTimeout != 0 {
		t.Errorf("expected PoolIdleTimeout 0 to mean no expiry, got %v", cfg.PoolIdleTimeout)
	}
}

func TestWarmOriginsParsing(t *testing.T) {
	os.Setenv("POOL_WARM_ORIGINS", "a.example.com:443/h2, b.example.com:80/h1 ,")
	defer os.Unsetenv("POOL_WARM_ORIGINS")

	cfg := Load()
	want := []string{"a.example.com:443/h2", "b.example.com:80/h1"}
	if len(cfg.WarmOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.WarmOrigins)
	}
	for i := range want {
		if cfg.WarmOrigins[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], cfg.WarmOrigins[i])
		}
	}
}
