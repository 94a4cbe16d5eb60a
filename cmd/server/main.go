// Command server runs the article API with the timestamp plugin registered.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/changhyeonkim/gorm-timestamp/internal/bootstrap"
	"github.com/changhyeonkim/gorm-timestamp/internal/config"
	"github.com/changhyeonkim/gorm-timestamp/internal/router"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/database"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/logger"
	"github.com/changhyeonkim/gorm-timestamp/internal/shared/validator"
	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp/gormplugin"
)

const envFlag = "env"

var serverFlags = map[string]cobraflags.Flag{
	envFlag: &cobraflags.StringFlag{
		Name:  envFlag,
		Value: "local",
		Usage: "Environment (local|dev|prod), selects .env.<env>",
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Run the article API",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			env := serverFlags[envFlag].GetString()

			logger.Setup(env)
			slog.Info("서버 초기화 시작", "env", env)

			if err := run(env); err != nil {
				slog.Error("서버 초기화 실패", "error", err)
				return err
			}

			slog.Info("서버 종료 완료", "env", env)
			return nil
		},
	}
	cobraflags.RegisterMap(rootCmd, serverFlags)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run wires config, database and HTTP server and blocks until shutdown
func run(env string) error {
	// Create root context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	slog.Info("환경 변수 로드 성공")

	// Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("데이터베이스 연결 실패: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("데이터베이스 종료 실패", "error", err)
		}
	}()

	srv, err := setupServer(cfg, db)
	if err != nil {
		return err
	}

	// Start server with graceful shutdown
	return startWithGracefulShutdown(ctx, srv, cfg.Server.GracefulTimeout)
}

// setupServer initializes and configures the HTTP server
func setupServer(cfg *config.Config, db *database.DB) (*bootstrap.Server, error) {
	boot := bootstrap.NewBootstrap(cfg)
	ginEngine := boot.SetupEngine()

	if err := validator.RegisterAll(); err != nil {
		return nil, fmt.Errorf("공통 Validator 등록 실패: %w", err)
	}

	// Setup application-specific routes
	router.Setup(ginEngine, cfg, db)

	slog.Info("서버 설정 완료",
		"env", cfg.App.Env,
		"db_driver", cfg.Database.Driver,
		"plugin", gormplugin.Name,
		"timestamp_utc", cfg.Timestamp.UTC,
	)

	return bootstrap.New(cfg, ginEngine), nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func startWithGracefulShutdown(ctx context.Context, srv *bootstrap.Server, gracefulTimeout time.Duration) error {
	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		serverErrors <- srv.Start()
	}()

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for either server error or interrupt signal
	select {
	case err := <-serverErrors:
		// Server failed to start or stopped unexpectedly
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("서버 오류: %w", err)
		}
		return nil

	case sig := <-quit:
		// Received shutdown signal
		slog.Info("종료 신호 수신됨", "signal", sig.String())

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(ctx, gracefulTimeout)
		defer cancel()

		// Attempt graceful shutdown
		slog.Info("서버 종료 중...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("서버 강제 종료: %w", err)
		}
		return nil
	}
}
