package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bank-identity/internal/config"
	apphttp "bank-identity/internal/http"
	"bank-identity/internal/password"
	"bank-identity/internal/repository/sqlite"
	"bank-identity/internal/service"
	"bank-identity/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	scheme, err := password.ByName(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatalf("password scheme: %v", err)
	}
	if scheme.Name() == password.SchemeLegacySHA256 {
		logger.Warn("running with the legacy unsalted sha256 password scheme; keep only for compatibility with migrated hashes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	store := sqlite.NewCredentialStore(db)
	if err := store.Init(ctx); err != nil {
		logger.Fatalf("init credential store: %v", err)
	}

	loginListener := func(ctx context.Context, username string, err error) {
		if err != nil {
			logger.WithField("username", username).Info("login rejected")
			return
		}
		logger.WithField("username", username).Info("login succeeded")
	}

	claimsService := service.NewClaimsService(store)
	authService := service.NewAuthService(store, scheme, claimsService, loginListener)
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.TokenTTL())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authService,
		claimsService,
		store,
		issuer,
		cfg.QueryTimeout(),
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
