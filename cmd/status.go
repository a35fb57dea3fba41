package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tachiyu/line-mcp-server/internal/host"
	"github.com/tachiyu/line-mcp-server/internal/logging"
	"github.com/tachiyu/line-mcp-server/internal/schedule"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show line-mcp-server configuration status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfg := appCfg
	path := configPath()

	_, statErr := os.Stat(path)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Fprintf(out, "Config:    %s %s\n", path, cfgMark)

	token := "(not set)"
	if cfg.Line.ChannelAccessToken != "" {
		token = "✓ " + logging.Redact(cfg.Line.ChannelAccessToken)
	}
	fmt.Fprintf(out, "Token:     %s\n", token)

	to := cfg.Line.DefaultRecipient
	if to == "" {
		to = "(not set)"
	}
	fmt.Fprintf(out, "Recipient: %s\n", to)

	base := cfg.Server.BaseURL
	if base == "" {
		base = host.DeriveBaseURL(cfg.Server.Addr)
	}
	fmt.Fprintf(out, "Listen:    %s (SSE %s%s)\n", cfg.Server.Addr, base, host.SSEPath)
	metrics := "off"
	if cfg.Server.Metrics {
		metrics = host.MetricsPath
	}
	fmt.Fprintf(out, "Metrics:   %s\n\n", metrics)

	jobs := schedule.JobsFromConfig(cfg)
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No scheduled notifications.")
		return nil
	}
	fmt.Fprintf(out, "%-20s %-20s %-20s %-20s\n", "Name", "Schedule", "To", "Next Run")
	now := time.Now()
	for _, j := range jobs {
		next := "invalid spec"
		if t, err := schedule.Next(j.Spec, now); err == nil {
			next = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%-20s %-20s %-20s %-20s\n", truncStr(j.Name, 19), truncStr(j.Spec, 19), truncStr(j.To, 19), next)
	}
	return nil
}

// truncStr shortens s to at most n runes, marking the cut with an ellipsis.
func truncStr(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
