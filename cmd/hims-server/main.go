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
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hims/hims/internal/config"
	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/domain/discharge"
	"github.com/hims/hims/internal/domain/transfer"
	"github.com/hims/hims/internal/domain/ward"
	"github.com/hims/hims/internal/platform/auth"
	"github.com/hims/hims/internal/platform/db"
	"github.com/hims/hims/internal/platform/middleware"
	"github.com/hims/hims/internal/platform/telemetry"
	"github.com/hims/hims/internal/platform/validation"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hims-server",
		Short: "Hospital inpatient management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
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

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
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

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// defaultWards is the starter layout created by the seed command.
var defaultWards = []struct {
	Name string
	Code string
	Beds int
}{
	{"General Ward", "GEN", 20},
	{"Intensive Care Unit", "ICU", 8},
	{"Maternity Ward", "MAT", 12},
	{"Pediatric Ward", "PED", 10},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default wards and beds",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			allocator := ward.NewAllocator(ward.NewRegistry(ward.NewRepo(pool)))
			for _, w := range defaultWards {
				created, err := allocator.CreateWard(ctx, w.Name, w.Code, w.Beds)
				if err != nil {
					return fmt.Errorf("seed ward %s: %w", w.Code, err)
				}
				fmt.Printf("Created %s (%s) with %d beds\n", created.Name, created.Code, w.Beds)
			}
			return nil
		},
	}
}

// stores bundles the per-domain repositories behind one driver choice.
type stores struct {
	ward      ward.Repository
	admission admission.Repository
	transfer  transfer.Repository
	discharge discharge.Repository
	pool      *pgxpool.Pool
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		return &stores{
			ward:      ward.NewMemRepo(),
			admission: admission.NewMemRepo(),
			transfer:  transfer.NewMemRepo(),
			discharge: discharge.NewMemRepo(),
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	return &stores{
		ward:      ward.NewRepo(pool),
		admission: admission.NewRepo(pool),
		transfer:  transfer.NewRepo(pool),
		discharge: discharge.NewRepo(pool),
		pool:      pool,
	}, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		logger.Warn().Msg("running in development mode; all requests get admin access")
	}

	// Storage
	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	if st.pool != nil {
		defer st.pool.Close()
		logger.Info().Msg("connected to database")
	} else {
		logger.Info().Msg("using in-memory store")
	}

	// Core engine
	registry := ward.NewRegistry(st.ward)
	allocator := ward.NewAllocator(registry)
	ledger := admission.NewLedger(st.admission, registry, allocator)
	coordinator := transfer.NewCoordinator(st.transfer, ledger)
	processor := discharge.NewProcessor(st.discharge, ledger)

	// Bed gauge derives its values from the registry at scrape time.
	prometheus.MustRegister(telemetry.NewBedCollector(func(ctx context.Context) ([]telemetry.WardBedCount, error) {
		summaries, err := registry.ListWards(ctx)
		if err != nil {
			return nil, err
		}
		var counts []telemetry.WardBedCount
		for _, s := range summaries {
			counts = append(counts,
				telemetry.WardBedCount{WardCode: s.Code, Status: string(ward.BedAvailable), Count: s.Occupancy.Available},
				telemetry.WardBedCount{WardCode: s.Code, Status: string(ward.BedOccupied), Count: s.Occupancy.Occupied},
				telemetry.WardBedCount{WardCode: s.Code, Status: string(ward.BedReserved), Count: s.Occupancy.Reserved},
				telemetry.WardBedCount{WardCode: s.Code, Status: string(ward.BedMaintenance), Count: s.Occupancy.Maintenance},
			)
		}
		return counts, nil
	}))

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(telemetry.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health and metrics stay outside the authenticated group.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if st.pool != nil {
		e.GET("/health/db", db.HealthHandler(st.pool))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	apiV1.Use(middleware.RequestTimeout(30 * time.Second))

	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSecret),
		}))
	}

	ward.NewHandler(registry, allocator).RegisterRoutes(apiV1)
	admission.NewHandler(ledger).RegisterRoutes(apiV1)
	transfer.NewHandler(coordinator).RegisterRoutes(apiV1)
	discharge.NewHandler(processor).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
