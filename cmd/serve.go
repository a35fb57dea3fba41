package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tachiyu/line-mcp-server/internal/container"
	"github.com/tachiyu/line-mcp-server/internal/logging"
)

var (
	serveAddr    string
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP tools over SSE and run scheduled notifications",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Verbose logging")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := appCfg
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveVerbose {
		cleanup, err := logging.Init(cfg.LogFilePath(), "debug")
		if err != nil {
			return err
		}
		closeLog()
		closeLog = cleanup
	}
	log := logging.Get()

	c, err := container.New(cfg, version)
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	if _, err := c.LineClient(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; only the echo tool is served\n", err)
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Host().Run(gctx) })
	g.Go(func() error { return c.Scheduler().Start(gctx) })

	fmt.Printf("line-mcp-server %s listening, SSE endpoint %s/sse. Press Ctrl+C to stop.\n",
		version, c.Host().BaseURL())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("serve: stopped with error")
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
