package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/questify/api/handler"
	"github.com/fastygo/questify/internal/config"
	"github.com/fastygo/questify/internal/infrastructure/ai"
	"github.com/fastygo/questify/internal/infrastructure/buffer"
	"github.com/fastygo/questify/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/questify/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/questify/internal/infrastructure/redis"
	"github.com/fastygo/questify/internal/infrastructure/token"
	"github.com/fastygo/questify/internal/middleware"
	"github.com/fastygo/questify/internal/router"
	"github.com/fastygo/questify/internal/services"
	"github.com/fastygo/questify/internal/services/lifecycle"
	"github.com/fastygo/questify/pkg/httpcontext"
	"github.com/fastygo/questify/pkg/logger"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/repository/postgres"
	redisRepo "github.com/fastygo/questify/repository/redis"
	authUC "github.com/fastygo/questify/usecase/auth"
	"github.com/fastygo/questify/usecase/gamification"
	plannerUC "github.com/fastygo/questify/usecase/planner"
	profileUC "github.com/fastygo/questify/usecase/profile"
	skillUC "github.com/fastygo/questify/usecase/skill"
	taskUC "github.com/fastygo/questify/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(
		[]monitor.Check{
			monitor.PostgresCheck(pool),
			monitor.RedisCheck(redisClient),
			monitor.BufferCheck(bufferStore),
		},
		bufferStore,
		cfg.Monitor.Interval,
		zapLogger,
	)
	mon.Refresh(appCtx)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	repos := repository.Repositories{
		Users:    postgres.NewUserRepository(pool),
		Tasks:    postgres.NewTaskRepository(pool),
		Skills:   postgres.NewSkillRepository(pool),
		Missions: postgres.NewMissionRepository(pool),
		Events:   postgres.NewEventRepository(pool),
	}
	areaRepo := postgres.NewAreaRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	uow := postgres.NewUnitOfWork(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.TokenTTL)
	locker := redisRepo.NewLocker(redisClient)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		services.Replayers{Tasks: repos.Tasks, Projects: projectRepo, Areas: areaRepo},
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	issuer, err := token.NewIssuer(cfg.JWT.Secret)
	if err != nil {
		zapLogger.Fatal("token issuer", zap.Error(err))
	}

	suggester := ai.NewClient(ai.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, zapLogger)
	if !suggester.Enabled() {
		zapLogger.Warn("AI_API_KEY not set, task creation and mission generation are disabled")
	}

	authCfg := authUC.Config{TokenTTL: cfg.JWT.TokenTTL}
	if cfg.OAuth.Enabled() {
		verifier, err := token.NewAssertionVerifier(cfg.OAuth.ClientSecret, cfg.OAuth.Issuer, cfg.OAuth.ClientID)
		if err != nil {
			zapLogger.Fatal("oauth verifier", zap.Error(err))
		}
		authCfg.Identities = verifier
	} else {
		zapLogger.Info("OAUTH_* not set, oauth callback is disabled")
	}
	authUseCase := authUC.New(repos.Users, sessionRepo, issuer, zapLogger, authCfg)
	engine := gamification.New(uow, repos, suggester, locker, zapLogger, gamification.Config{
		MissionLockTTL: cfg.Gamification.MissionLockTTL,
		MissionWait:    cfg.Gamification.MissionWait,
	})
	profileUseCase := profileUC.New(repos.Users, repos.Events, zapLogger)
	taskUseCase := taskUC.New(repos.Tasks, projectRepo, repos.Skills, suggester, bufferBridge, zapLogger)
	plannerUseCase := plannerUC.New(areaRepo, projectRepo, bufferBridge, zapLogger)
	skillUseCase := skillUC.New(repos.Skills, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, engine, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, engine, ctxAdapter, zapLogger),
		Planner: apiHandler.NewPlannerHandler(plannerUseCase, ctxAdapter, zapLogger),
		Skill:   apiHandler.NewSkillHandler(skillUseCase, ctxAdapter, zapLogger),
		Mission: apiHandler.NewMissionHandler(engine, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, suggester.Enabled(), ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(authUseCase, 2*time.Second, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            middleware.AccessLog(zapLogger)(r.Handler),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("env", cfg.Environment))
	if err := manager.Run(appCtx, func() error { return server.ListenAndServe(cfg.Address()) }); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
