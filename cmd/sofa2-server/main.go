package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/icuscore/sofa2/internal/config"
	"github.com/icuscore/sofa2/internal/domain/sofa"
	"github.com/icuscore/sofa2/internal/platform/auth"
	"github.com/icuscore/sofa2/internal/platform/db"
	"github.com/icuscore/sofa2/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sofa2-server",
		Short: "SOFA-2 organ-dysfunction scoring service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(dailyCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	svc    *sofa.Service
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		svc:    sofa.NewService(sofa.NewRepo(pool), cfg.Scoring(), logger),
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scoring API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(a.logger))
			e.Use(middleware.Recovery(a.logger))

			e.GET("/healthz", db.HealthHandler(a.pool))

			api := e.Group("/api", auth.Middleware(a.cfg.AuthSecret))
			sofa.NewHandler(a.svc, a.cfg.Scoring()).RegisterRoutes(api)

			errCh := make(chan error, 1)
			go func() {
				errCh <- e.Start(":" + a.cfg.Port)
			}()
			a.logger.Info().Str("port", a.cfg.Port).Msg("server started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			case <-quit:
				a.logger.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every persisted window and write CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			ctx := context.Background()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			res, err := a.svc.ScoreCohort(ctx)
			if err != nil {
				return err
			}
			w, closeOut, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := sofa.WriteScoresCSV(w, res.Scores); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			a.logger.Info().Int("rows", len(res.Scores)).Str("out", outName(out)).Msg("scores written")
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output file (default stdout)")
	return cmd
}

func dailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Expand windows into 24h days, score with carry-forward, write CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			ctx := context.Background()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.pool.Close()

			res, err := a.svc.ScoreDaily(ctx)
			if err != nil {
				return err
			}
			w, closeOut, err := openOutput(out)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := sofa.WriteDailyCSV(w, res.Scores); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			a.logger.Info().Int("rows", len(res.Scores)).Str("out", outName(out)).Msg("daily scores written")
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output file (default stdout)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, applied := "pending", ""
				if s.Applied {
					status = "applied"
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, applied)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func outName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
