package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/qgate"
	"github.com/viant/qgate/internal/logger"
)

var serveFlags struct {
	config  string
	listen  string
	node    string
	console bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway",
	Long:  "Serves the app websocket at /app and the approval API, prompting approvals on the console unless disabled.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := serveConfig(runCtx, cmd)
		if err != nil {
			return err
		}
		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			return err
		}
		slog.SetDefault(appLogger)
		log := appLogger.With("component", "cmd.serve")

		srv, err := qgate.New(runCtx, qgate.WithConfig(cfg), qgate.WithLogger(appLogger))
		if err != nil {
			log.Error("failed to initialize gateway", "error", err)
			return err
		}
		defer func() {
			_ = srv.Shutdown(context.Background())
		}()
		if err = srv.Serve(runCtx); err != nil {
			log.Error("gateway stopped", "error", err)
			return err
		}
		return nil
	},
}

func serveConfig(ctx context.Context, cmd *cobra.Command) (*qgate.Config, error) {
	cfg := qgate.DefaultConfig()
	if serveFlags.config != "" {
		loaded, err := qgate.LoadConfig(ctx, serveFlags.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = serveFlags.listen
	}
	if flags.Changed("node") {
		cfg.Node.URL = serveFlags.node
	}
	if flags.Changed("console") {
		cfg.Console = serveFlags.console
	}
	return cfg, cfg.Validate()
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.config, "config", "c", "", "config URL (yaml or json, any afs location)")
	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "", "listen address, host:port")
	serveCmd.Flags().StringVar(&serveFlags.node, "node", "", "node API URL")
	serveCmd.Flags().BoolVar(&serveFlags.console, "console", true, "prompt approvals on the console")
	rootCmd.AddCommand(serveCmd)
}
