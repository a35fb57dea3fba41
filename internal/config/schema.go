// Package config defines the configuration schema for line-mcp-server.
//
// Keys are camelCase in both the JSON and the YAML form so a file can be
// converted between the two without renaming anything.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// LineConfig holds the Messaging API credential and the recipient used when
// a caller does not name one.
type LineConfig struct {
	ChannelAccessToken string `json:"channelAccessToken" yaml:"channelAccessToken"`
	DefaultRecipient   string `json:"defaultRecipient,omitempty" yaml:"defaultRecipient,omitempty"`
}

// ServerConfig configures the MCP SSE listener.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	// BaseURL is the externally reachable origin advertised to SSE clients
	// in the endpoint event. Derived from Addr when empty.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Metrics bool   `json:"metrics" yaml:"metrics"`
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{Addr: ":3001", Metrics: true}
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

func defaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// ScheduleConfig is one recurring text notification.
type ScheduleConfig struct {
	Name    string `json:"name" yaml:"name"`
	Spec    string `json:"spec" yaml:"spec"` // standard 5-field cron expression
	To      string `json:"to,omitempty" yaml:"to,omitempty"`
	Text    string `json:"text" yaml:"text"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Config is the root configuration object.
type Config struct {
	Line      LineConfig       `json:"line" yaml:"line"`
	Server    ServerConfig     `json:"server" yaml:"server"`
	Log       LogConfig        `json:"log" yaml:"log"`
	Schedules []ScheduleConfig `json:"schedules" yaml:"schedules"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Server:    defaultServerConfig(),
		Log:       defaultLogConfig(),
		Schedules: []ScheduleConfig{},
	}
}

// LogFilePath returns the log file path with a leading "~/" expanded.
func (c *Config) LogFilePath() string {
	return expandHome(c.Log.File)
}

// EnabledSchedules returns the schedules with Enabled set, in file order.
func (c *Config) EnabledSchedules() []ScheduleConfig {
	var out []ScheduleConfig
	for _, s := range c.Schedules {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Recipient returns to, or the configured default recipient when to is blank.
func (c *Config) Recipient(to string) string {
	if t := strings.TrimSpace(to); t != "" {
		return t
	}
	return c.Line.DefaultRecipient
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
