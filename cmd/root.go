package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement/internal/core/config"
	"procurement/internal/core/container"
	"procurement/internal/core/logger"
	"procurement/internal/core/routes"
	"procurement/internal/database"
	"procurement/internal/gateway"
	"procurement/internal/idempotency"
	"procurement/internal/requerimientos"
	"procurement/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log := logger.NewLogger(cfg.LogLevel)
		defer log.Sync()

		var db *sql.DB
		if cfg.DatabaseURL != "" {
			db, err = database.NewPostgresConnection(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("Connected to the database")
		} else {
			log.Warn("DATABASE_URL not set, audit log and saga journal disabled")
		}

		var rdb *redis.Client
		if cfg.RedisAddr != "" {
			rdb, err = idempotency.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer rdb.Close()
		} else {
			log.Warn("REDIS_ADDR not set, idempotency keys disabled")
		}

		gin.SetMode(gin.ReleaseMode)
		c := container.NewAppContainer(cfg, db, rdb, log)
		defer c.Close()

		srv := &http.Server{
			Addr:              cfg.AppHost,
			Handler:           routes.NewRouter(c),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("addr", cfg.AppHost))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Applies the audit log and saga journal migrations to DATABASE_URL.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		migrationDir, _ := cmd.Flags().GetString("dir")
		if migrationDir == "" {
			migrationDir = cfg.MigrationsDir
		}

		if err := database.RunMigrations(cfg.DatabaseURL, migrationDir, logger.NewLogger(cfg.LogLevel)); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var BoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the approval board for a user.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.GraphQLURL == "" {
			return fmt.Errorf("GRAPHQL_URL is required")
		}

		usuario, _ := cmd.Flags().GetString("usuario")
		search, _ := cmd.Flags().GetString("search")
		password := os.Getenv("BOARD_PASSWORD")
		if usuario == "" || password == "" {
			return fmt.Errorf("--usuario and BOARD_PASSWORD are required")
		}

		log := logger.NewLogger("warn")
		defer log.Sync()

		c := container.NewAppContainer(cfg, nil, nil, log)
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		login, err := c.Gateway.Login(ctx, usuario, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		board, err := c.RequerimientoService.Board(gateway.WithToken(ctx, login.Token), store.New(), login.ID, search)
		if err != nil {
			return fmt.Errorf("load board: %w", err)
		}

		requerimientos.RenderBoard(cmd.OutOrStdout(), board)
		return nil
	},
}

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:          "procurement",
		Short:        "Procurement approval service",
		SilenceUsage: true,
	}
	MigrateCmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	BoardCmd.Flags().String("usuario", "", "Upstream user name")
	BoardCmd.Flags().String("search", "", "Filter cards by code or description")
	rootCmd.AddCommand(ServeCmd, MigrateCmd, BoardCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
