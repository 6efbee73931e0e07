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

	"github.com/MihkelJ/crowd-fund-yapp/internal/config"
	"github.com/MihkelJ/crowd-fund-yapp/internal/database"
	"github.com/MihkelJ/crowd-fund-yapp/internal/ethereum"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
	"github.com/MihkelJ/crowd-fund-yapp/internal/logic"
	"github.com/MihkelJ/crowd-fund-yapp/internal/oracle"
	"github.com/MihkelJ/crowd-fund-yapp/internal/router"
	"github.com/MihkelJ/crowd-fund-yapp/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crowdfund",
		Short:         "Crowdfunding backend with on-chain payment reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	})
	return root
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger.Info("Database schema is up to date (%s)", cfg.Database.Driver)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// 初始化支付预言机
	paymentOracle, closeOracle, err := buildOracle(cfg)
	if err != nil {
		return err
	}
	defer closeOracle()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	reconcileLogic := logic.NewReconcileLogic(db, paymentOracle, cfg.Oracle.Timeout())
	r := router.Setup(db, reconcileLogic)

	// 启动定时任务
	tasks, err := scheduler.Start(db, cfg.Scheduler)
	if err != nil {
		return err
	}
	defer tasks.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// buildOracle 按配置组装预言机，开启链上校验时包一层回执检查
func buildOracle(cfg *config.Config) (oracle.Client, func(), error) {
	var client oracle.Client
	switch cfg.Oracle.Driver {
	case "static":
		static, err := oracle.NewStaticClientFromConfig(cfg.Oracle.Payments)
		if err != nil {
			return nil, nil, err
		}
		logger.Warn("Using static payment oracle with %d payments", len(cfg.Oracle.Payments))
		client = static
	default:
		client = oracle.NewHTTPClient(cfg.Oracle.BaseURL, cfg.Oracle.Timeout())
		logger.Info("Using payment oracle at %s", cfg.Oracle.BaseURL)
	}

	if !cfg.Chain.Enabled {
		return client, func() {}, nil
	}

	// 初始化以太坊客户端
	ethClient, err := ethereum.Init(cfg.Chain)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Verifying payments against chain %d with %d confirmations", ethClient.ChainId(), cfg.Chain.Confirmations)
	return oracle.NewChainVerifiedClient(client, ethClient, ethClient.ChainId(), cfg.Chain.Confirmations), ethClient.Close, nil
}
