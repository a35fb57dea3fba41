package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tachiyu/line-mcp-server/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Write a default configuration file",
	RunE:  runOnboard,
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		// Rewrite with current defaults filled in, keeping existing values.
		existing, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := config.Save(existing, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Config refreshed at %s\n", path)
	} else {
		cfg := config.DefaultConfig()
		cfg.Schedules = []config.ScheduleConfig{
			{Name: "good-morning", Spec: "0 9 * * *", Text: "Good morning!", Enabled: false},
		}
		if err := config.Save(&cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Created config at %s\n", path)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  1. Set line.channelAccessToken in %s (or %s)\n", path, config.EnvChannelAccessToken)
	fmt.Fprintf(out, "  2. Set line.defaultRecipient (or %s) to your user ID\n", config.EnvUserID)
	fmt.Fprintln(out, "  3. Try it: line-mcp-server send text - \"Hello!\"")
	fmt.Fprintln(out, "  4. Serve:  line-mcp-server serve")
	return nil
}
