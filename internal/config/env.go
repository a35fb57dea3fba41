package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvUserID             = "LINE_USER_ID"
	EnvAddr               = "LINE_MCP_ADDR"
	EnvBaseURL            = "LINE_MCP_BASE_URL"
	EnvMetrics            = "LINE_MCP_METRICS"
	EnvLogLevel           = "LINE_MCP_LOG_LEVEL"
	EnvLogFile            = "LINE_MCP_LOG_FILE"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - LINE_CHANNEL_ACCESS_TOKEN (string)
// - LINE_USER_ID (string, default recipient)
// - LINE_MCP_ADDR (string, e.g. ":3001")
// - LINE_MCP_BASE_URL (string, e.g. "https://mcp.example.com")
// - LINE_MCP_METRICS (bool, "true"/"false")
// - LINE_MCP_LOG_LEVEL (string, "debug"|"info"|"warn"|"error")
// - LINE_MCP_LOG_FILE (string)
func ApplyEnvOverrides(cfg *Config) error {
	setStringEnv(EnvChannelAccessToken, &cfg.Line.ChannelAccessToken)
	setStringEnv(EnvUserID, &cfg.Line.DefaultRecipient)
	setStringEnv(EnvAddr, &cfg.Server.Addr)
	setStringEnv(EnvBaseURL, &cfg.Server.BaseURL)
	setStringEnv(EnvLogLevel, &cfg.Log.Level)
	setStringEnv(EnvLogFile, &cfg.Log.File)

	if err := setBoolEnv(EnvMetrics, func(b bool) { cfg.Server.Metrics = b }); err != nil {
		return err
	}
	return nil
}

func setStringEnv(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}
