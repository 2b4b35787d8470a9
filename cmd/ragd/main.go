package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/ragstack/ragd/internal/ai"
	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/db"
	"github.com/ragstack/ragd/internal/embedcache"
	"github.com/ragstack/ragd/internal/filestore"
	"github.com/ragstack/ragd/internal/handler"
	"github.com/ragstack/ragd/internal/job"
	"github.com/ragstack/ragd/internal/middleware"
	"github.com/ragstack/ragd/internal/repo"
	"github.com/ragstack/ragd/internal/schedule"
	"github.com/ragstack/ragd/internal/service"
	"github.com/ragstack/ragd/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ragd",
		Short: "ragd retrieval server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run ragd server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Strings("collections", cfg.Collections),
		zap.String("chat_provider", cfg.AI.Chat.Provider),
		zap.String("embed_provider", cfg.AI.Embedding.Provider),
	)

	store := vectorstore.NewPgStore(conn)
	docRepo := repo.NewDocumentRepo(conn)

	chatProvider, err := ai.NewChatProvider(cfg.AI.Chat.Provider, cfg.AI.Chat.Data)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	chatter := ai.NewChatter(chatProvider, cfg.AI.Chat.Model)

	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embedding.Provider, cfg.AI.Embedding.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.Embedding.Model)
	if cfg.AI.Cache.Size > 0 {
		embedder = embedcache.Wrap(embedder, cfg.AI.Cache.Size, time.Duration(cfg.AI.Cache.TTLMinutes)*time.Minute)
	}

	var archive filestore.Store
	if cfg.FileStore != nil {
		archive, err = filestore.New(*cfg.FileStore)
		if err != nil {
			return fmt.Errorf("init file store: %w", err)
		}
	}

	ingestService := service.NewIngestService(cfg, embedder, store, docRepo, archive)
	queryService := service.NewQueryService(cfg, embedder, chatter, store)

	deps := handler.RouterDeps{
		Ingest:      handler.NewIngestHandler(ingestService),
		Query:       handler.NewQueryHandler(queryService),
		Collections: handler.NewCollectionHandler(cfg),
		Documents:   handler.NewDocumentHandler(docRepo, archive),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconcile := job.NewCollectionReconcileJob(store, cfg.Collections, cfg.AI.Embedding.Dimension)
	if err := reconcile.Run(ctx); err != nil {
		return fmt.Errorf("ensure collections: %w", err)
	}

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(reconcile, cfg.ReconcileCron); err != nil {
		return fmt.Errorf("schedule reconcile job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
