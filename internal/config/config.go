package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPPort         int
	TelegramBotToken string
	RedisURL         string

	GateBaseURL string

	MarketTTLSecs   int
	OHLCVTTLSecs    int
	FetchAttempts   int
	FetchDelayMS    int
	CacheMaxEntries int

	AlertPollSecs int
	AlertRearm    bool

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, using in-memory cache")
	}

	cfg.HTTPPort = envInt("HTTP_PORT", 8080)

	cfg.GateBaseURL = strings.TrimSpace(os.Getenv("GATE_BASE_URL"))

	cfg.MarketTTLSecs = envInt("MARKET_TTL_SECS", 60)
	cfg.OHLCVTTLSecs = envInt("OHLCV_TTL_SECS", 60)
	cfg.FetchAttempts = envInt("FETCH_ATTEMPTS", 3)
	cfg.FetchDelayMS = envInt("FETCH_DELAY_MS", 1000)
	cfg.CacheMaxEntries = envInt("CACHE_MAX_ENTRIES", 1024)

	cfg.AlertPollSecs = envInt("ALERT_POLL_SECS", 30)
	cfg.AlertRearm = strings.EqualFold(strings.TrimSpace(os.Getenv("ALERT_REARM")), "true")

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = envInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = envInt("MCP_REQUEST_TIMEOUT_SECS", 10)
	cfg.MCPRateLimitPerMin = envInt("MCP_RATE_LIMIT_PER_MIN", 60)

	return cfg
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
