package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"traderjournal/internal/analysis"
	"traderjournal/internal/cache"
	"traderjournal/internal/config"
	cronrunner "traderjournal/internal/cron"
	"traderjournal/internal/db"
	"traderjournal/internal/handler"
	"traderjournal/internal/llm"
	"traderjournal/internal/logger"
	"traderjournal/internal/marketdata"
	gormrepository "traderjournal/internal/repository/gorm"
	"traderjournal/internal/service"
)

func main() {
	cfgPath := os.Getenv("TJ_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TJ_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	var completer llm.CompletionService
	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	if openaiSvc, err := llm.NewOpenAIService(cfg.LLM, apiKey); err != nil {
		logger.Warn("llm disabled", zap.Error(err))
	} else {
		completer = openaiSvc
	}

	var quoteCache cache.Store
	if strings.EqualFold(cfg.Cache.Backend, "redis") {
		quoteCache = cache.NewRedisStore(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
	} else {
		quoteCache = cache.NewMemoryStore()
	}
	marketClient := marketdata.NewClient(&http.Client{Timeout: cfg.MarketData.Timeout}, cfg.MarketData.BaseURL, quoteCache)

	extractor := &analysis.Extractor{
		Completer:  completer,
		Logger:     logger,
		MinEntries: cfg.Analysis.QualitativeMinEntries,
		WindowDays: cfg.Analysis.QualitativeWindowDays,
	}
	patternSvc := &service.PatternService{
		Repo:      store,
		Extractor: extractor,
		Logger:    logger,
		Config:    cfg.Analysis,
	}
	advisorSvc := &service.AdvisorService{
		Repo:    store,
		Matcher: &analysis.DraftMatcher{Completer: completer, Logger: logger},
		Logger:  logger,
		Config:  cfg.Analysis,
	}
	reportSvc := &service.ReportService{
		Repo:      store,
		Completer: completer,
		Logger:    logger,
		Config:    cfg.Analysis,
	}
	entrySvc := &service.EntryAnalysisService{
		Repo:      store,
		Completer: completer,
		Logger:    logger,
	}
	marketSyncSvc := &service.MarketSyncService{
		Repo:   store,
		Client: marketClient,
		Logger: logger,
		Config: cfg.MarketData,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	patternHandler := &handler.PatternHandler{Service: patternSvc, Logger: logger}
	patternHandler.Register(engine)
	advisorHandler := &handler.AdvisorHandler{Service: advisorSvc, Logger: logger}
	advisorHandler.Register(engine)
	reportHandler := &handler.ReportHandler{Service: reportSvc, Logger: logger}
	reportHandler.Register(engine)
	entryHandler := &handler.EntryHandler{Service: entrySvc, Logger: logger}
	entryHandler.Register(engine)
	journalHandler := &handler.JournalHandler{Repo: store}
	journalHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.PatternMining, func(ctx context.Context) {
			result, err := patternSvc.Analyze(ctx)
			if err != nil {
				logger.Warn("cron pattern mining failed", zap.Error(err))
				return
			}
			logger.Info("cron pattern mining ok",
				zap.Int("statistical", result.Statistical),
				zap.Int("qualitative", result.Qualitative),
				zap.Int("saved", len(result.Saved)),
			)
		})
		if err != nil {
			logger.Warn("cron register pattern mining failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.MarketSync, func(ctx context.Context) {
			if err := marketSyncSvc.SyncOnce(ctx); err != nil {
				logger.Warn("cron market sync failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register market sync failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
