package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskhub-dev/taskhub/internal/config"
	"github.com/taskhub-dev/taskhub/internal/db"
	httpx "github.com/taskhub-dev/taskhub/internal/http"
	"github.com/taskhub-dev/taskhub/internal/jobs"
	"github.com/taskhub-dev/taskhub/internal/observability"
	"github.com/taskhub-dev/taskhub/internal/queue/redisclient"
	"github.com/taskhub-dev/taskhub/internal/repo/memory"
	"github.com/taskhub-dev/taskhub/internal/repo/postgres"
	"github.com/taskhub-dev/taskhub/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "taskhub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	deps := httpx.Deps{
		Sessions: session.NewRegistry(),
		Prom:     prom,
	}

	// postgres when configured, the in-memory store otherwise
	if cfg.DBURL != "" {
		pool, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}

		defer pool.Close()

		deps.Users = postgres.NewUsersRepo(pool)
		deps.Projects = postgres.NewProjectsRepo(pool)
		deps.Tasks = postgres.NewTasksRepo(pool)
		deps.Ping = func() error {
			ctx, cancel := config.WithTimeout(2 * time.Second)
			defer cancel()
			return pool.Ping(ctx)
		}

		log.Info("storage: postgres")
	} else {
		store := memory.NewStore()

		deps.Users = store
		deps.Projects = store
		deps.Tasks = store

		log.Info("storage: memory")
	}

	// lifecycle events go to redis when configured, otherwise just the log
	if cfg.RedisAddr != "" {
		queue := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Queue:    cfg.QueueName,
		})

		defer queue.Close()

		deps.Events = jobs.NewPublisher(queue, log)

		log.Info("events: redis queue", "queue", cfg.QueueName)
	} else {
		deps.Events = jobs.NewLogPublisher(log)

		log.Info("events: log only")
	}

	router := httpx.NewRouter(log, cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
