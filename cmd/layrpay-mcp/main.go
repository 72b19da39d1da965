package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/layrpay/layrpay-mcp/internal/api"
	"github.com/layrpay/layrpay-mcp/internal/config"
	"github.com/layrpay/layrpay-mcp/internal/logger"
	"github.com/layrpay/layrpay-mcp/internal/mcp"
	"github.com/layrpay/layrpay-mcp/internal/tools"
	"github.com/layrpay/layrpay-mcp/internal/tools/payments"
	"github.com/layrpay/layrpay-mcp/internal/transport"
	"github.com/layrpay/layrpay-mcp/pkg/version"
)

var (
	configPath string
	listenAddr string
)

func main() {
	root := &cobra.Command{
		Use:     "layrpay-mcp",
		Short:   "MCP server exposing LayrPay payment-authorization tools",
		Version: version.Version,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/SSE server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	serve.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (overrides config)")

	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.LogLevel)
	logCfg.Format = cfg.LogFormat
	logger.Init(logCfg)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.UserID,
		api.WithValidationTimeout(cfg.ValidationTimeout()))

	registry := tools.NewRegistry()
	for _, tool := range payments.GetTools(client) {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("failed to register tools: %w", err)
		}
	}

	logger.Info("starting server",
		"version", version.Version,
		"backend", cfg.API.BaseURL,
		"tools", registry.Names())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := transport.NewServer(mcp.NewServer(registry))
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
