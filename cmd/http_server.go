package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smilesniffer/ticketing-backend/internal"
	"github.com/smilesniffer/ticketing-backend/internal/core/events"
	"github.com/smilesniffer/ticketing-backend/internal/gallery"
	gallerypg "github.com/smilesniffer/ticketing-backend/internal/gallery/postgres"
	"github.com/smilesniffer/ticketing-backend/internal/payment"
	"github.com/smilesniffer/ticketing-backend/internal/payment/daraja"
	paymentpg "github.com/smilesniffer/ticketing-backend/internal/payment/postgres"
	"github.com/smilesniffer/ticketing-backend/internal/ticket"
	ticketpg "github.com/smilesniffer/ticketing-backend/internal/ticket/postgres"
	"github.com/smilesniffer/ticketing-backend/internal/transport/rest"
	"github.com/smilesniffer/ticketing-backend/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests and gateway callbacks`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	eventBus := events.NewEventBus(deps.Logger)

	darajaClient := daraja.NewClient(daraja.Config{
		BaseURL:        deps.Config.Mpesa.BaseURL,
		ConsumerKey:    deps.Config.Mpesa.ConsumerKey,
		ConsumerSecret: deps.Config.Mpesa.ConsumerSecret,
		ShortCode:      deps.Config.Mpesa.ShortCode,
		Passkey:        deps.Config.Mpesa.Passkey,
		CallbackURL:    deps.Config.Mpesa.CallbackURL,
		HTTPTimeout:    deps.Config.Mpesa.HTTPTimeout,
	}, deps.Logger)

	ticketRepo := ticketpg.NewTicketRepository(deps.GormDB)
	ticketService := ticket.NewTicketService(ticketRepo, deps.Logger)
	ticketHandler := ticket.NewHandler(ticketService)

	galleryRepo := gallerypg.NewPictureRepository(deps.GormDB)
	galleryService := gallery.NewGalleryService(galleryRepo, deps.Logger)
	galleryHandler := gallery.NewHandler(galleryService)

	paymentRepo := paymentpg.NewPaymentRepository(deps.GormDB)
	paymentService := payment.NewPaymentService(darajaClient, paymentRepo, ticketService, eventBus, deps.Logger)
	paymentHandler := payment.NewHandler(paymentService)
	webhookHandler := payment.NewWebhookHandler(paymentHandler.BaseHandler, paymentService, deps.Logger)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, ticketHandler, galleryHandler, paymentHandler, webhookHandler, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	router := chi.NewRouter()

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: router,
	}, nil
}

// initDB opens the pgx-backed connection pool and a gorm session on top of
// the same pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return dbConn, gormDB, nil
}
