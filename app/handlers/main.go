package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	cfgPkg "github.com/tstore-shop/account-service/app/config"
	"github.com/tstore-shop/account-service/app/logger"
	"github.com/tstore-shop/account-service/app/mailer"
	"github.com/tstore-shop/account-service/app/metrics"
	appmw "github.com/tstore-shop/account-service/app/middleware"
	"github.com/tstore-shop/account-service/app/photostore"
	"github.com/tstore-shop/account-service/app/security"
	"github.com/tstore-shop/account-service/app/services"
	"github.com/tstore-shop/account-service/app/store"
)

// maxUploadSize caps the signup multipart body, photo included.
const maxUploadSize = 10 << 20 // 10MB

func main() {
	logger.Init()
	cfgPkg.Load()

	jwtSecret := cfgPkg.GetString("JWT_SECRET", "")
	if jwtSecret == "" {
		logger.Logger.Fatal().Msg("JWT_SECRET is required")
	}

	dbUser := cfgPkg.GetString("POSTGRES_USER", "postgres")
	dbPassword := cfgPkg.GetString("POSTGRES_PASSWORD", "postgres")
	dbHost := cfgPkg.GetString("POSTGRES_HOST", "localhost")
	dbPort := cfgPkg.GetString("POSTGRES_PORT", "5432")
	dbName := cfgPkg.GetString("POSTGRES_DB", "tstore")
	dbSSLMode := cfgPkg.GetString("POSTGRES_SSLMODE", "disable")

	dbAddr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSLMode)

	cfg := config{
		addr: cfgPkg.GetString("ADDR", ":8080"),
		db: dbConfig{
			addr:         dbAddr,
			maxOpenConns: cfgPkg.GetInt("DB_MAX_OPEN_CONNS", 30),
			maxIdleConns: cfgPkg.GetInt("DB_MAX_IDLE_CONNS", 30),
			maxIdleTime:  cfgPkg.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
	}

	logger.Logger.Info().
		Str("host", dbHost).
		Str("database", dbName).
		Msg("connecting to postgres")

	db, err := cfgPkg.NewDB(cfg.db.addr, cfg.db.maxOpenConns, cfg.db.maxIdleConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	if cfgPkg.GetBool("DB_ENSURE_SCHEMA", false) {
		if err := store.EnsureSchema(context.Background(), db); err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to ensure database schema")
		}
	}

	redisClient, err := cfgPkg.NewRedisClient()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	photos, err := photostore.NewS3Store(photostore.Config{
		Endpoint:        cfgPkg.GetString("S3_ENDPOINT", ""),
		AccessKeyID:     cfgPkg.GetString("S3_ACCESS_KEY_ID", "minioadmin"),
		SecretAccessKey: cfgPkg.GetString("S3_SECRET_ACCESS_KEY", "minioadmin"),
		Region:          cfgPkg.GetString("S3_REGION", "us-east-1"),
		UsePathStyle:    cfgPkg.GetBool("S3_USE_PATH_STYLE", true),
		Bucket:          cfgPkg.GetString("S3_BUCKET", "user-photos"),
		CDNBaseURL:      cfgPkg.GetString("CDN_BASE_URL", "http://localhost:9000/user-photos"),
	}, logger.Logger)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to set up photo store")
	}
	if cfgPkg.GetBool("S3_ENSURE_BUCKET", false) {
		if err := photos.EnsureBucket(context.Background()); err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to ensure photo bucket")
		}
	}

	smtp := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfgPkg.GetString("SMTP_HOST", "localhost"),
		Port:     cfgPkg.GetInt("SMTP_PORT", 587),
		Username: cfgPkg.GetString("SMTP_AUTH_USER", ""),
		Password: cfgPkg.GetString("SMTP_AUTH_PASS", ""),
		From:     cfgPkg.GetString("SMTP_FROM", "noreply@tstore.example"),
		Timeout:  cfgPkg.GetDuration("SMTP_TIMEOUT", 10*time.Second),
		Insecure: cfgPkg.GetBool("SMTP_INSECURE", false),
	}, logger.Logger)

	signer := security.NewTokenSigner(jwtSecret, cfgPkg.GetDuration("JWT_EXPIRY", 72*time.Hour))

	st := store.NewStorage(db)
	accounts := services.NewAccountService(st, photos, smtp, signer)

	app := &application{
		config:      cfg,
		accounts:    accounts,
		signer:      signer,
		redisClient: redisClient,
	}

	if err := app.runWithGracefulShutdown(app.mount(), db, redisClient); err != nil {
		logger.Logger.Fatal().Err(err).Msg("server error")
	}
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type config struct {
	addr string
	db   dbConfig
}

type application struct {
	config      config
	accounts    *services.AccountService
	signer      *security.TokenSigner
	redisClient *redis.Client
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(appmw.RequestIDTracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(appmw.Metrics())
	r.Use(chimw.Timeout(60 * time.Second))

	signupLimit := appmw.RouteLimit{Name: "signup", Capacity: 10, Window: 5 * time.Minute}
	loginLimit := appmw.RouteLimit{Name: "login", Capacity: 5, Window: time.Minute}
	forgotLimit := appmw.RouteLimit{Name: "forgotPassword", Capacity: 3, Window: time.Hour}
	resetLimit := appmw.RouteLimit{Name: "passwordReset", Capacity: 5, Window: time.Minute}
	meLimit := appmw.RouteLimit{Name: "me", Capacity: 120, Window: time.Minute}

	r.Get("/health", app.healthCheckHandler)
	r.Get("/metrics", metrics.MetricsHandler().ServeHTTP)

	r.Route("/users", func(r chi.Router) {
		r.With(appmw.RateLimit(app.redisClient, signupLimit, appmw.PrincipalIP())).
			Post("/signup", app.signupHandler)
		r.With(appmw.RateLimit(app.redisClient, loginLimit, appmw.PrincipalIP())).
			Post("/login", app.loginHandler)
		r.With(appmw.RateLimit(app.redisClient, forgotLimit, appmw.PrincipalIP())).
			Post("/forgotPassword", app.forgotPasswordHandler)
		r.With(appmw.RateLimit(app.redisClient, resetLimit, appmw.PrincipalIP())).
			Get("/password/reset/{token}", app.passwordResetHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(appmw.BearerAuth(app.signer))
			pr.Use(appmw.RateLimit(app.redisClient, meLimit, appmw.PrincipalAccountOrIP()))
			pr.Get("/me", app.meHandler)
		})
	})

	return r
}

// runWithGracefulShutdown starts the server and handles SIGTERM/SIGINT,
// allowing in-flight requests to complete before closing connections.
func (app *application) runWithGracefulShutdown(
	mux http.Handler,
	db interface{ Close() error },
	redisClient interface{ Close() error },
) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Logger.Info().Str("addr", app.config.addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Logger.Info().Str("signal", sig.String()).Msg("Received signal, starting graceful shutdown")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	logger.Logger.Info().Msg("Server gracefully stopped")

	if err := db.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing database")
	}
	if err := redisClient.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing Redis")
	}

	logger.Logger.Info().Msg("Graceful shutdown completed")
	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}
