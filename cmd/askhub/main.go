package main

import (
	"context"
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

	"github.com/xiexing/askhub/internal/ai"
	"github.com/xiexing/askhub/internal/config"
	"github.com/xiexing/askhub/internal/db"
	"github.com/xiexing/askhub/internal/embedcache"
	"github.com/xiexing/askhub/internal/filestore"
	"github.com/xiexing/askhub/internal/fixedqa"
	"github.com/xiexing/askhub/internal/handler"
	"github.com/xiexing/askhub/internal/job"
	"github.com/xiexing/askhub/internal/kb"
	"github.com/xiexing/askhub/internal/middleware"
	"github.com/xiexing/askhub/internal/pkg/jwt"
	"github.com/xiexing/askhub/internal/router"
	"github.com/xiexing/askhub/internal/schedule"
	"github.com/xiexing/askhub/internal/service"
	"github.com/xiexing/askhub/internal/session"
	"github.com/xiexing/askhub/internal/tool"
)

func main() {
	var configPath string
	var tokenSubject string

	rootCmd := &cobra.Command{
		Use:   "askhub",
		Short: "askhub qa server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run askhub server",
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
			return runServer(cfg)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint an admin token for the kb endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ttl := time.Hour * time.Duration(cfg.Auth.TTLHours)
			token, err := jwt.GenerateToken(tokenSubject, []byte(cfg.Auth.JWTSecret), ttl)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")

	rootCmd.AddCommand(runCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildKBStore(cfg *config.Config) (kb.Store, error) {
	switch cfg.KB.Store.Type {
	case "postgres":
		conn, err := db.Open(cfg.KB.Database)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		if err := db.ApplyMigrations(conn); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return kb.NewPGStore(conn), nil
	default:
		fs, err := filestore.New(cfg.KB.FileStore)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		return kb.NewFileStore(fs, cfg.KB.Store.Prefix), nil
	}
}

// buildAIBackends constructs one generator/embedder pair per configured
// provider and folds multiple backends into a failover group.
func buildAIBackends(cfg config.AIConfig) (ai.IGenerator, ai.IEmbedder, error) {
	var gens []ai.GeneratorEntry
	var embeds []ai.EmbedderEntry
	for _, backend := range cfg.Backends() {
		genProvider, err := ai.NewGenProvider(backend.Provider, backend.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("init gen provider %s: %w", backend.Provider, err)
		}
		embedProvider, err := ai.NewEmbedProvider(backend.Provider, backend.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("init embed provider %s: %w", backend.Provider, err)
		}
		gens = append(gens, ai.GeneratorEntry{
			Name:      backend.Provider,
			Generator: ai.NewGenerator(genProvider, cfg.Model),
		})
		embeds = append(embeds, ai.EmbedderEntry{
			Name:     backend.Provider,
			Embedder: ai.NewEmbedder(embedProvider, cfg.EmbedModel),
		})
	}
	if len(gens) == 1 {
		return gens[0].Generator, embeds[0].Embedder, nil
	}
	return ai.NewGroupGenerator(gens), ai.NewGroupEmbedder(embeds), nil
}

func runServer(cfg *config.Config) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("ai_backends", len(cfg.AI.Backends())),
		zap.String("kb_store", cfg.KB.Store.Type),
	)

	generator, rawEmbedder, err := buildAIBackends(cfg.AI)
	if err != nil {
		return err
	}
	embedder := embedcache.Wrap(
		rawEmbedder,
		cfg.AI.EmbedCacheSize,
		time.Minute*time.Duration(cfg.AI.EmbedCacheTTLMinutes),
	)
	manager := ai.NewManager(generator, embedder, ai.ManagerConfig{
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		TopP:        cfg.AI.TopP,
		MaxTokens:   cfg.AI.MaxTokens,
	})

	kbStore, err := buildKBStore(cfg)
	if err != nil {
		return err
	}
	splitter := kb.NewSplitter(kb.SplitterConfig{
		ChunkSize:        cfg.KB.ChunkSize,
		ChunkOverlap:     cfg.KB.ChunkOverlap,
		FineChunkSize:    cfg.KB.FineChunkSize,
		FineChunkOverlap: cfg.KB.FineChunkOverlap,
	})
	builder := kb.NewBuilder(splitter, embedder, kb.NewIndex(), kbStore)
	if err := builder.Restore(ctx); err != nil {
		logutil.GetLogger(ctx).Warn("knowledge base restore failed", zap.Error(err))
	}

	entries, err := fixedqa.LoadEntries(ctx, cfg.FixedQA.Path)
	if err != nil {
		return fmt.Errorf("load fixed answers: %w", err)
	}
	matcher := fixedqa.NewMatcher(entries, cfg.FixedQA.Threshold)

	tools := tool.NewRegistry()
	tools.Register(tool.NewWeatherTool(tool.WeatherConfig{
		Type:    cfg.Weather.Type,
		Timeout: time.Duration(cfg.Weather.Timeout) * time.Second,
	}))

	rt := router.New(manager, tools)
	qaService := service.NewQAService(builder, matcher, rt)
	kbService := service.NewKBService(builder)
	sessions := session.NewStore(cfg.Session.Window)

	deps := handler.RouterDeps{
		QA:        handler.NewQAHandler(qaService, sessions),
		KB:        handler.NewKBHandler(kbService),
		Tools:     handler.NewToolHandler(tools),
		JWTSecret: []byte(cfg.Auth.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	scheduler := schedule.NewScheduler()
	cleanup := job.NewSessionCleanupJob(sessions, time.Minute*time.Duration(cfg.Session.MaxIdleMinutes))
	if err := scheduler.AddJob(cleanup, cfg.Session.CleanupSpec); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(runCtx)
	defer scheduler.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
