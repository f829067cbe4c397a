package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smartmeal/internal/api"
	"smartmeal/internal/config"
	"smartmeal/internal/logger"
	"smartmeal/internal/platform/gemini"
	"smartmeal/internal/platform/localllm"
	"smartmeal/internal/platform/spoonacular"
	"smartmeal/internal/recipe"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var opts []spoonacular.Option
	if cfg.SpoonacularURL != "" {
		opts = append(opts, spoonacular.WithBaseURL(cfg.SpoonacularURL))
	}
	searcher := spoonacular.NewClient(cfg.SpoonacularAPIKey, opts...)

	store, closeStore, err := newStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	notes, closeNotes, err := newNoteWriter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeNotes()

	handler := api.NewHandler(searcher, store, notes, log)
	handler.ImageDir = cfg.ImageDir

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, handler, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("note_provider", cfg.NoteProvider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, handler *api.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(log))

	// Configure CORS middleware
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api.RegisterRoutes(r, handler)
	return r
}

func newStore(cfg *config.Config, log *zap.Logger) (api.RecipeStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, using in-memory store")
		return recipe.NewMemoryStore(), func() {}, nil
	}

	dbStore, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating postgresstore: %w", err)
	}
	return dbStore, func() { dbStore.Close() }, nil
}

func newNoteWriter(ctx context.Context, cfg *config.Config) (api.NoteWriter, func(), error) {
	switch cfg.NoteProvider {
	case config.NoteProviderGemini:
		geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return geminiClient, func() { geminiClient.Close() }, nil
	case config.NoteProviderLocal:
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
