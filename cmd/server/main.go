package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FedassaMeg/haven-sub012/internal/audit"
	"github.com/FedassaMeg/haven-sub012/internal/clearance"
	"github.com/FedassaMeg/haven-sub012/internal/consent"
	"github.com/FedassaMeg/haven-sub012/internal/export"
	"github.com/FedassaMeg/haven-sub012/internal/hasher"
	"github.com/FedassaMeg/haven-sub012/internal/notes"
	"github.com/FedassaMeg/haven-sub012/internal/platform/config"
	"github.com/FedassaMeg/haven-sub012/internal/platform/httpserver"
	"github.com/FedassaMeg/haven-sub012/internal/platform/logger"
	"github.com/FedassaMeg/haven-sub012/internal/platform/middleware"
	"github.com/FedassaMeg/haven-sub012/internal/platform/postgres"
	redisplatform "github.com/FedassaMeg/haven-sub012/internal/platform/redis"
	"github.com/FedassaMeg/haven-sub012/internal/policy"
	"github.com/FedassaMeg/haven-sub012/internal/redact"
	httptransport "github.com/FedassaMeg/haven-sub012/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages; everything here is assembly.
func main() {
	log := logger.New()
	if err := run(context.Background(), log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	// Stores: Postgres when configured, in-process otherwise. Notes are
	// in-process either way; their durable home is the case-record service.
	var (
		clearanceStore clearance.ClearanceStore = clearance.NewInMemoryClearanceStore()
		configStore    clearance.ConfigStore    = clearance.NewInMemoryConfigStore()
		auditStore     audit.Store              = audit.NewInMemoryStore()
	)
	if cfg.PostgresURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db, err := postgres.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		clearanceStore = clearance.NewPostgresClearanceStore(pool)
		configStore = clearance.NewPostgresConfigStore(pool)
		auditStore = audit.NewPostgresStore(db)
	}

	var cache policy.DecisionCache = policy.NewInMemoryCache()
	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = policy.NewRedisCache(redisClient.Client)
	}

	var sinks []audit.Sink
	var changeConsumer *policy.ChangeConsumer
	changeEvents := make(chan policy.ChangeEvent, 64)
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
			return err
		}
		sinks = append(sinks, sink)

		changeConsumer, err = policy.NewChangeConsumer(cfg.KafkaBrokers, policy.DefaultChangeTopic, changeEvents, log)
		if err != nil {
			return err
		}
		defer changeConsumer.Close()
	}

	publisher := audit.NewPublisher(auditStore, log, sinks...)
	recorder := audit.NewRecorder(publisher)

	engine := redact.NewEngine(hasher.NewPseudonymizer(cfg.PseudonymSalt))
	resolver := policy.NewCachedResolver(policy.NewResolver(cfg.PolicyVersion), cache, log)

	exports := export.NewService(export.NewProjectionBuilder(resolver, engine), recorder, log)
	clearances := clearance.NewService(clearanceStore, configStore, recorder, log)
	noteService := notes.NewService(notes.NewInMemoryStore(), recorder, log)
	consents := consent.NewInMemoryStore()
	packets := hasher.NewBuilder(hasher.AlgorithmSHA256Salt)

	handler := httptransport.NewHandler(exports, clearances, noteService, auditStore, packets, consents, recorder, log)
	verifier := middleware.NewTokenVerifier(cfg.JWTSigningKey)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, verifier, log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return policy.NewInvalidator(cache, changeEvents, log).Run(ctx)
	})
	if changeConsumer != nil {
		g.Go(func() error { return changeConsumer.Run(ctx) })
	}
	g.Go(func() error {
		log.Info("starting haven engine", "addr", cfg.Addr, "policy_version", cfg.PolicyVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
