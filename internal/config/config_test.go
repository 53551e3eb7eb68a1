package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"TELEGRAM_BOT_TOKEN", "REDIS_URL", "HTTP_PORT", "GATE_BASE_URL",
		"MARKET_TTL_SECS", "OHLCV_TTL_SECS", "FETCH_ATTEMPTS", "FETCH_DELAY_MS",
		"CACHE_MAX_ENTRIES", "ALERT_POLL_SECS", "ALERT_REARM",
		"MCP_TRANSPORT", "MCP_HTTP_ENABLED", "MCP_HTTP_BIND", "MCP_HTTP_PORT",
		"MCP_AUTH_TOKEN", "MCP_REQUEST_TIMEOUT_SECS", "MCP_RATE_LIMIT_PER_MIN",
	} {
		t.Setenv(name, "")
	}

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.MarketTTLSecs != 60 || cfg.OHLCVTTLSecs != 60 {
		t.Errorf("expected default TTLs of 60s, got %d/%d", cfg.MarketTTLSecs, cfg.OHLCVTTLSecs)
	}
	if cfg.FetchAttempts != 3 || cfg.FetchDelayMS != 1000 {
		t.Errorf("unexpected fetch defaults: %d attempts, %dms delay", cfg.FetchAttempts, cfg.FetchDelayMS)
	}
	if cfg.CacheMaxEntries != 1024 {
		t.Errorf("expected default cache size 1024, got %d", cfg.CacheMaxEntries)
	}
	if cfg.AlertPollSecs != 30 || cfg.AlertRearm {
		t.Errorf("unexpected alert defaults: %ds poll, rearm=%v", cfg.AlertPollSecs, cfg.AlertRearm)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPEnabled {
		t.Errorf("unexpected MCP defaults: transport=%s enabled=%v", cfg.MCPTransport, cfg.MCPHTTPEnabled)
	}
	if cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Errorf("unexpected MCP HTTP defaults: %s:%d", cfg.MCPHTTPBind, cfg.MCPHTTPPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("GATE_BASE_URL", "http://localhost:8081/api/v4")
	t.Setenv("MARKET_TTL_SECS", "5")
	t.Setenv("FETCH_ATTEMPTS", "5")
	t.Setenv("ALERT_REARM", "TRUE")
	t.Setenv("MCP_TRANSPORT", "HTTP")
	t.Setenv("MCP_AUTH_TOKEN", "secret")

	cfg := Load()
	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port override, got %d", cfg.HTTPPort)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("expected redis url, got %s", cfg.RedisURL)
	}
	if cfg.GateBaseURL != "http://localhost:8081/api/v4" {
		t.Errorf("expected base url override, got %s", cfg.GateBaseURL)
	}
	if cfg.MarketTTLSecs != 5 || cfg.FetchAttempts != 5 {
		t.Errorf("unexpected overrides: %d/%d", cfg.MarketTTLSecs, cfg.FetchAttempts)
	}
	if !cfg.AlertRearm {
		t.Error("expected rearm enabled")
	}
	if cfg.MCPTransport != "http" {
		t.Errorf("expected transport lowered to http, got %s", cfg.MCPTransport)
	}
	if cfg.MCPAuthToken != "secret" {
		t.Errorf("expected auth token, got %q", cfg.MCPAuthToken)
	}
}

func TestLoadRejectsInvalidNumbers(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("FETCH_ATTEMPTS", "-2")
	t.Setenv("MCP_TRANSPORT", "websocket")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected fallback port, got %d", cfg.HTTPPort)
	}
	if cfg.FetchAttempts != 3 {
		t.Errorf("expected fallback attempts, got %d", cfg.FetchAttempts)
	}
	if cfg.MCPTransport != "stdio" {
		t.Errorf("expected unsupported transport to fall back to stdio, got %s", cfg.MCPTransport)
	}
}
