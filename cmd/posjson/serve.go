package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/posjson/pkg/engine"
	"github.com/praetorian-inc/posjson/pkg/serve"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming parse server",
	Long: `Run posjson as a long-lived streaming server that accepts parse requests
via stdin and writes results to stdout using NDJSON format.

The process loads layouts once at startup and processes requests until
stdin closes, a close request arrives, or SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	layouts, err := loadLayouts(layoutsPath)
	if err != nil {
		return err
	}

	core, err := engine.New(engine.Config{
		Layouts: layouts,
		Logger:  debugLogger(cmd),
		NoStore: true,
	})
	if err != nil {
		return err
	}
	defer core.Close()

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}
