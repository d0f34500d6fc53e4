package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/vitae/renderer/backend"
	"github.com/ByLCY/vitae/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP export server",
	Long:  "Serves POST /v1/cv/pdf, POST /v1/cv/layout and GET /healthz until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	serveAddr  string
	serveTheme string
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "监听地址（默认取配置 addr）")
	serveCmd.Flags().StringVarP(&serveTheme, "theme", "t", "", "主题文件路径")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = serveTheme
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	style, err := loadStyle(cfg.Theme)
	if err != nil {
		return err
	}

	app := server.New(server.Options{
		Renderer: cfg.Renderer,
		Style:    &style,
		Backends: backend.NewSet(),
		Logger:   logger,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "renderer", cfg.Renderer)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
