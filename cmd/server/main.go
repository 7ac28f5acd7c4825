// @title           Lifeline Admin API
// @version         1.0
// @description     Back office API for the Lifeline blood donation platform.
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	_ "github.com/andriandrian/lifeline-admin/docs"
	"github.com/andriandrian/lifeline-admin/internal/api"
	"github.com/andriandrian/lifeline-admin/internal/auth"
	"github.com/andriandrian/lifeline-admin/internal/config"
	"github.com/andriandrian/lifeline-admin/internal/database"
	"github.com/andriandrian/lifeline-admin/internal/logging"
	"github.com/andriandrian/lifeline-admin/internal/metrics"
	"github.com/andriandrian/lifeline-admin/internal/storage"
	"github.com/andriandrian/lifeline-admin/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}
	log := logging.New(cfg.Log)

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		log.WithError(err).Fatal("could not connect to the database")
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("could not ping the database")
	}
	log.Info("connected to the database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.WithError(err).Fatal("could not initialise image storage")
	}
	log.WithField("path", cfg.Storage.Path).Info("images are stored locally")

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	store := database.NewStore(dbpool, wsHub)
	if err := bootstrapOperator(ctx, store, cfg.Bootstrap, log); err != nil {
		log.WithError(err).Fatal("could not seed the bootstrap operator")
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authManager := auth.NewManager(tokens, store)
	m := metrics.New(prometheus.DefaultRegisterer)

	server := api.NewServer(cfg, store, authManager, localStorage, wsHub, log, m)
	r := server.Routes()
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}

// bootstrapOperator creates the first operator account when the bootstrap
// credentials are configured and no account has that email yet.
func bootstrapOperator(ctx context.Context, store *database.Store, cfg config.BootstrapConfig, log logrus.FieldLogger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	existing, err := store.GetUserByEmail(ctx, cfg.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	user, err := store.CreateUser(ctx, database.CreateUserParams{
		Firstname:    cfg.Firstname,
		Email:        cfg.Email,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if err != nil {
		return err
	}
	log.WithField("user_id", user.ID).Info("bootstrap operator created")
	return nil
}
