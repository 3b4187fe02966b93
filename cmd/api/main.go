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

	"voiceagent-platform/internal/agents"
	"voiceagent-platform/internal/auth"
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/config"
	"voiceagent-platform/internal/credits"
	"voiceagent-platform/internal/httpapi"
	"voiceagent-platform/internal/knowledge"
	"voiceagent-platform/internal/llm"
	"voiceagent-platform/internal/notify"
	"voiceagent-platform/internal/numbers"
	"voiceagent-platform/internal/prompts"
	"voiceagent-platform/internal/webhooks"
	"voiceagent-platform/pkg/logger"
	"voiceagent-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)
	cfg.WarnOnMissingIntegrations(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	dispatcher := webhooks.NewDispatcher(cfg.Webhooks)

	// The AI generator is optional: without a key the prompt endpoints report
	// 503 and the rest of the dashboard keeps working.
	var generator prompts.Generator
	if client, gerr := llm.New(cfg.OpenAI); gerr == nil {
		generator = client
	} else if errors.Is(gerr, llm.ErrNotConfigured) {
		log.Warn("ai generation disabled", "reason", gerr)
	} else {
		log.Error("llm init failed", "err", gerr)
		os.Exit(1)
	}

	numberStore := numbers.NewSQLRepository(db)
	numberService := numbers.NewService(numberStore, dispatcher)

	creditService := credits.NewService(db)
	knowledgeService := knowledge.NewService(knowledge.NewSQLRepository(db))
	notifyService := notify.NewService(notify.NewSQLRepository(db))
	promptService := prompts.NewService(prompts.NewSQLRepository(db), generator, dispatcher)
	callService := calls.NewService(calls.NewSQLRepository(db), rdb)

	agentService := agents.NewService(agents.Deps{
		Repo:      agents.NewSQLRepository(db),
		Numbers:   numbers.NewDirectory(numberStore),
		Credits:   creditService,
		Hooks:     dispatcher,
		Knowledge: knowledgeService,
		Notifier:  notifyService,
		Locker:    agents.RedisLocker{RDB: rdb},
		Billing:   cfg.Billing,
	})

	authService := auth.NewService(auth.NewSQLRepository(db), authManager)

	h := httpapi.Handlers{
		Auth:      authService,
		Agents:    agentService,
		Numbers:   numberService,
		Prompts:   promptService,
		Credits:   creditService,
		Calls:     callService,
		Knowledge: knowledgeService,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
