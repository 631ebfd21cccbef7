package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sponsormatch/matchbot/internal/api"
	"github.com/sponsormatch/matchbot/internal/api/handler"
	"github.com/sponsormatch/matchbot/internal/api/token"
	"github.com/sponsormatch/matchbot/internal/core/access"
	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
	"github.com/sponsormatch/matchbot/internal/core/service"
	"github.com/sponsormatch/matchbot/internal/infrastructure/config"
	"github.com/sponsormatch/matchbot/internal/infrastructure/db/memory"
	mongodir "github.com/sponsormatch/matchbot/internal/infrastructure/db/mongo"
	redisstore "github.com/sponsormatch/matchbot/internal/infrastructure/db/redis"
	"github.com/sponsormatch/matchbot/internal/infrastructure/notify"
	"github.com/sponsormatch/matchbot/internal/infrastructure/queue"
	"github.com/sponsormatch/matchbot/internal/infrastructure/storage/file"
	"github.com/sponsormatch/matchbot/pkg/logger"
)

// @title                       MatchBot Session API
// @version                     1.0
// @description                 Session and access control for the creator/brand sponsorship app.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	envErr := loadLocalEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet; fall back to defaults.
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "matchbot",
	})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("failed to read .env file")
	}

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = uuid.NewString()
		log.Warn().Msg("SESSION_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	var checks []handler.DependencyCheck

	dir, closeDir, dirChecks, err := buildDirectory(ctx, cfg, logger.Component("directory"))
	if err != nil {
		log.Fatal().Err(err).Msg("init directory")
	}
	defer closeDir()
	checks = append(checks, dirChecks...)

	store, closeStore, storeChecks, err := buildSessionStore(ctx, cfg, logger.Component("session_store"))
	if err != nil {
		log.Fatal().Err(err).Msg("init session store")
	}
	defer closeStore()
	checks = append(checks, storeChecks...)

	feed := notify.NewFeed(0)
	dispatcher := queue.NewDispatcher(cfg.NotifyBuffer, logger.Component("notifications"),
		notify.NewLogSink(logger.Component("notifications")),
		feed,
	)
	dispatcher.Start(context.Background())

	var opts []service.CredentialOption
	if cfg.Directory.SimulatedLatency {
		opts = append(opts, service.WithLatency(service.DefaultLatency))
	}
	validator := service.NewCredentialService(dir, logger.Component("credentials"), opts...)

	sessions := service.NewSessionManager(validator, store, dispatcher, logger.Component("session"))
	sessions.Init(ctx)

	e := api.NewRouter(api.Deps{
		Sessions:       sessions,
		Tokens:         token.NewIssuer(cfg.Session.Secret, cfg.Session.TokenTTL),
		Gate:           access.NewGate(access.DefaultRoutes()),
		Feed:           feed,
		Checks:         checks,
		Log:            logger.Component("http"),
		LoginRateLimit: cfg.LoginRateLimit,
	})

	go func() {
		log.Info().Str("addr", cfg.ListenAddr()).Str("env", cfg.Env).Msg("matchbot listening")
		if err := e.Start(cfg.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	dispatcher.Close()
	log.Info().Msg("matchbot stopped")
}

func buildDirectory(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Directory, func(), []handler.DependencyCheck, error) {
	switch cfg.Directory.Backend {
	case config.DirectoryBackendMongo:
		client, db, err := mongodir.Connect(ctx, mongodir.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		repo := mongodir.NewDirectoryRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		if err := seedDirectory(ctx, repo, log); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo directory")
		return repo, closeFn, []handler.DependencyCheck{handler.MongoCheck(db)}, nil

	default:
		dir, err := memory.NewSeededDirectory(bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Int("accounts", dir.Len()).Msg("using in-memory directory")
		return dir, func() {}, nil, nil
	}
}

// seedDirectory inserts the demo accounts the first time a durable directory
// is used.
func seedDirectory(ctx context.Context, dir ports.Directory, log zerolog.Logger) error {
	creds, err := memory.SeedCredentials(bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for i := range creds {
		err := dir.Create(ctx, &creds[i])
		switch {
		case err == nil:
			log.Info().Str("user_id", creds[i].Profile.ID).Msg("seeded demo account")
		case errors.Is(err, domain.ErrDuplicateEmail):
		default:
			return err
		}
	}
	return nil
}

func buildSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, func(), []handler.DependencyCheck, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis session store")
		store := redisstore.NewSessionStore(client, cfg.Redis.Prefix, cfg.Session.StoreTTL, log)
		return store, func() { _ = client.Close() }, []handler.DependencyCheck{handler.RedisCheck(client)}, nil

	default:
		store, err := file.NewSessionStore(cfg.Session.Dir, log)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Str("path", store.Path()).Msg("using file session store")
		return store, func() {}, []handler.DependencyCheck{handler.DirCheck("session_dir", cfg.Session.Dir)}, nil
	}
}

// loadLocalEnv reads .env when present. A missing file is not an error.
func loadLocalEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
