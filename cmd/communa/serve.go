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

	"github.com/communa/backend/adapters/events"
	"github.com/communa/backend/adapters/hasher"
	"github.com/communa/backend/adapters/postgres"
	"github.com/communa/backend/adapters/signer"
	"github.com/communa/backend/adapters/store"
	"github.com/communa/backend/adapters/tokenizer"
	"github.com/communa/backend/adapters/users"
	"github.com/communa/backend/config"
	"github.com/communa/backend/internal/logging"
	"github.com/communa/backend/ports"
	"github.com/communa/backend/service"
	transport "github.com/communa/backend/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// memoryURL selects the in-process nonce store instead of Redis
const memoryURL = "memory://"

const (
	keyPrefix     = "communa:"
	sweepInterval = time.Minute
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logging.NewJSON(os.Stdout, cfg.LogLevel)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

type app struct {
	router  *gin.Engine
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// buildApp wires adapters and services from cfg
func buildApp(ctx context.Context, cfg *config.Config, log *logging.SlogLogger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	var (
		nonces    ports.NonceStore
		publisher ports.EventPublisher = events.NopPublisher{}
		mailer    ports.Mailer         = events.NopPublisher{}
	)

	if cfg.RedisURL == memoryURL {
		mem := store.NewMemoryStore()
		sweepCtx, cancel := context.WithCancel(context.Background())
		go mem.RunSweeper(sweepCtx, sweepInterval)
		a.closers = append(a.closers, func() error { cancel(); return nil })
		nonces = mem
		log.Warn(ctx, "using in-memory nonce store; state is not shared between instances")
	} else {
		client, err := store.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		nonces = store.NewRedisStore(client, keyPrefix)

		if cfg.EventsEnabled {
			pub, err := events.NewRedisStreamPublisher(client, log.Slog())
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, pub.Close)
			wm := events.NewWatermillPublisher(pub)
			publisher, mailer = wm, wm
		}
	}

	var repo ports.UserRepository
	if cfg.DatabaseDSN == "" {
		repo = users.NewMemoryRepository()
		log.Warn(ctx, "no database configured; users are kept in memory")
	} else {
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		repo = postgres.NewUserRepository(db)
	}

	sig, err := signer.New(cfg.Chain)
	if err != nil {
		return nil, err
	}

	tk := tokenizer.NewJWTTokenizer(tokenizer.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		ResetTTL:   cfg.ResetTokenTTL,
	})

	authService := service.NewAuthService(service.AuthDeps{
		Signer:    sig,
		Store:     nonces,
		Tokenizer: tk,
		Users:     repo,
		Hasher:    hasher.NewBcryptHasher(bcrypt.DefaultCost),
		Events:    publisher,
		Mailer:    mailer,
		Logger:    log,
	}, cfg.NonceTTL)
	timeTracker := service.NewTimeTrackerService(sig, nonces, authService, log, cfg.NonceTTL)

	gin.SetMode(gin.ReleaseMode)
	router, err := transport.SetupRouter(authService, timeTracker, cfg.TrustedProxies, log)
	if err != nil {
		return nil, err
	}
	a.router = router
	return a, nil
}

func serve(ctx context.Context, cfg *config.Config, log *logging.SlogLogger) error {
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error(context.Background(), "shutdown cleanup failed", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", "addr", cfg.HTTPAddr, "chain", cfg.Chain)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
