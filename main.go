package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"ranks-app/internal/config"
	"ranks-app/internal/obslog"
	"ranks-app/internal/roster"
	"ranks-app/internal/store"
	"ranks-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := obslog.Init(obslog.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Caller: !cfg.IsProd(),
	}); err != nil {
		log.Fatalf("logger: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	appStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := roster.NewClient(cfg.RankingServiceURL, roster.WithTimeout(cfg.RequestTimeout))
	svc := roster.NewService(client, appStore, cfg.DefaultRegion, logger)
	if _, err := svc.Refresh(ctx); err != nil {
		logger.Warn("initial roster refresh failed, serving stored snapshot", zap.Error(err))
	}
	go svc.Run(ctx, cfg.RefreshInterval)

	templates, err := web.NewTemplates(web.TemplateFS)
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	server := web.NewServer(svc, templates,
		web.WithLogger(logger),
		web.WithAdminKeyHash(cfg.AdminKeyHash),
	)

	r := chi.NewRouter()
	r.Mount("/", server.Routes())

	if cfg.OnLambda() {
		logger.Info("starting in lambda mode")
		adapter := httpadapter.New(r)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server", zap.Error(err))
	}
}

// openStore picks the first configured backend: postgres, sqlite, redis, then memory.
func openStore(cfg *config.AppConfig) (store.Store, error) {
	switch {
	case cfg.PostgresDSN != "":
		return store.NewPostgresStore(cfg.PostgresDSN, store.PostgresOptions{
			MigrationsDir: cfg.PostgresMigrationsDir,
		})
	case cfg.DBPath != "":
		return store.NewSQLiteStore(cfg.DBPath, store.SQLiteOptions{
			MigrationsDir: cfg.DBMigrationsDir,
		})
	case cfg.RedisURL != "":
		return store.NewRedisStore(cfg.RedisURL, store.RedisOptions{
			TTL: 2 * cfg.RefreshInterval,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
