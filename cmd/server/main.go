package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/longform/internal/config"
	"github.com/longform/internal/db"
	"github.com/longform/internal/handler"
	"github.com/longform/internal/logging"
	"github.com/longform/internal/render"
	"github.com/longform/internal/router"
	"github.com/longform/internal/seed"
	"github.com/longform/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "longform",
		Short:         "Longform essays and jottings server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd := newServeCmd()
	root.RunE = serveCmd.RunE
	root.AddCommand(serveCmd, newCreateUserCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig) error {
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.GinMode == gin.DebugMode)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword, db.RoleAdmin); err != nil {
		return fmt.Errorf("failed to ensure super root user: %w", err)
	}

	var debugSink *zap.Logger
	if cfg.DebugMode {
		sink, closeSink, err := logging.NewFileSink(cfg.DebugLogPath)
		if err != nil {
			return err
		}
		defer closeSink() //nolint:errcheck
		debugSink = sink
		logger.Info("debug log enabled", zap.String("path", cfg.DebugLogPath))
	}

	api := handler.NewAPI(handler.Options{
		DB:                   db.DB,
		Registry:             render.DefaultRegistry(),
		Logger:               logger,
		DebugSink:            debugSink,
		NonceSecret:          cfg.NonceSecret,
		NonceTTL:             cfg.NonceTTL,
		DebugMode:            cfg.DebugMode,
		SiteBaseURL:          cfg.SiteBaseURL,
		SiteName:             cfg.SiteName,
		EssayDefaultOrder:    cfg.EssayDefaultOrder,
		Mailer:               service.LogMailer{Logger: logger.Named("mail")},
		SubscribeNotifyEmail: cfg.SubscribeNotify,
	})

	// 设置并运行 Gin 服务器
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(cfg, api, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to run server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCreateUserCmd() *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user if the username is not taken",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := db.EnsureUser(db.DB, username, password, db.ParseRole(role)); err != nil {
				return err
			}
			fmt.Printf("user %s ready (%s)\n", username, db.ParseRole(role))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "plain text password")
	cmd.Flags().StringVar(&role, "role", string(db.RoleAuthor), "admin, editor or author")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo users, essays and jottings",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, true)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := db.Init(cfg.DatabasePath); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			summary, err := seed.Run(db.DB, logger, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d users, %d essays, %d jottings (password: %s)\n",
				summary.Users, summary.Essays, summary.Jottings, seed.DemoPassword)
			return nil
		},
	}
}
