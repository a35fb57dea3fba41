package config

import "testing"

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvChannelAccessToken, "env-token")
	t.Setenv(EnvUserID, "Uenv")
	t.Setenv(EnvAddr, "127.0.0.1:4000")
	t.Setenv(EnvBaseURL, "https://mcp.example.com")
	t.Setenv(EnvMetrics, "false")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFile, "/tmp/line-mcp.log")

	cfg := DefaultConfig()
	cfg.Line.ChannelAccessToken = "file-token"
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}

	if cfg.Line.ChannelAccessToken != "env-token" {
		t.Errorf("token = %q, env should win over file", cfg.Line.ChannelAccessToken)
	}
	if cfg.Line.DefaultRecipient != "Uenv" {
		t.Errorf("recipient = %q", cfg.Line.DefaultRecipient)
	}
	if cfg.Server.Addr != "127.0.0.1:4000" || cfg.Server.BaseURL != "https://mcp.example.com" || cfg.Server.Metrics {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/line-mcp.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestApplyEnvOverrides_EmptyKeepsFile(t *testing.T) {
	t.Setenv(EnvChannelAccessToken, "")

	cfg := DefaultConfig()
	cfg.Line.ChannelAccessToken = "file-token"
	if err := ApplyEnvOverrides(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Line.ChannelAccessToken != "file-token" {
		t.Errorf("token = %q", cfg.Line.ChannelAccessToken)
	}
}

func TestApplyEnvOverrides_InvalidBool(t *testing.T) {
	t.Setenv(EnvMetrics, "sometimes")

	cfg := DefaultConfig()
	if err := ApplyEnvOverrides(&cfg); err == nil {
		t.Fatal("expected error for invalid bool")
	}
}
