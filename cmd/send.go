package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tachiyu/line-mcp-server/internal/container"
	"github.com/tachiyu/line-mcp-server/internal/line"
)

var sendTimeout time.Duration

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Push a single message and print the raw API response",
}

func init() {
	sendCmd.PersistentFlags().DurationVarP(&sendTimeout, "timeout", "t", 0, "Abort the push after this long (0 = no deadline)")

	sendCmd.AddCommand(sendTextCmd)
	sendCmd.AddCommand(sendImageCmd)
	sendCmd.AddCommand(sendBatchCmd)
}

// ---- text ------------------------------------------------------------------

var sendTextCmd = &cobra.Command{
	Use:   "text <to> <text>",
	Short: "Push a text message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, func(ctx context.Context, c *line.Client) (line.Result, error) {
			return c.SendTextMessage(ctx, recipient(args[0]), args[1])
		})
	},
}

// ---- image -----------------------------------------------------------------

var sendImageCmd = &cobra.Command{
	Use:   "image <to> <original-url> <preview-url>",
	Short: "Push an image message",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, func(ctx context.Context, c *line.Client) (line.Result, error) {
			return c.SendImageMessage(ctx, recipient(args[0]), args[1], args[2])
		})
	},
}

// ---- batch -----------------------------------------------------------------

var sendBatchCmd = &cobra.Command{
	Use:   "batch <to> <json-array|->",
	Short: "Push message objects given as a JSON array (\"-\" reads stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := readMessages(cmd.InOrStdin(), args[1])
		if err != nil {
			return err
		}
		return dispatch(cmd, func(ctx context.Context, c *line.Client) (line.Result, error) {
			return c.SendMessages(ctx, recipient(args[0]), messages)
		})
	},
}

// readMessages parses a JSON array of message objects. Each element is kept
// as raw JSON so it reaches the API byte for byte.
func readMessages(stdin io.Reader, arg string) ([]line.Message, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("messages must be a JSON array: %w", err)
	}
	return line.RawMessages(raw), nil
}

// recipient maps "-" to the configured default recipient.
func recipient(to string) string {
	if to == "-" {
		to = ""
	}
	return appCfg.Recipient(to)
}

func dispatch(cmd *cobra.Command, send func(context.Context, *line.Client) (line.Result, error)) error {
	c, err := container.New(appCfg, version)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	client, err := c.LineClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sendTimeout)
		defer cancel()
	}

	res, err := send(ctx, client)
	if err != nil {
		return err
	}
	if len(res) == 0 {
		res = line.Result("{}")
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res)
	return err
}
