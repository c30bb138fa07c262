package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"sci-cast/bluesky"
	"sci-cast/config"
	"sci-cast/rss"
	"sci-cast/services"
	"sci-cast/storage"
	"sci-cast/textgen"
	"sci-cast/tts"

	_ "sci-cast/sources/arxiv"
	_ "sci-cast/sources/biorxiv"
	_ "sci-cast/sources/pubmed"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	voices, err := cfg.VoiceOptions()
	if err != nil {
		logging.Fatal("Persona config error", zap.Error(err))
	}

	prompts, err := services.LoadPrompts(cfg.PromptDir)
	if err != nil {
		logging.Fatal("Prompt load error", zap.Error(err))
	}

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	store := storage.NewObjectStore(s3Client, cfg, logging)

	textGen := textgen.NewClient(cfg.OpenAIAPIKey, cfg.GPTModel, logging,
		textgen.WithBaseURL(cfg.OpenAIBaseURL))
	speech := tts.NewClient(cfg.OpenAIAPIKey, cfg.TTSModel,
		time.Duration(cfg.TTSTimeoutSec)*time.Second, logging,
		tts.WithBaseURL(cfg.OpenAIBaseURL))
	poster := bluesky.NewClient(cfg.BlueskyHandle, cfg.BlueskyAppPassword, logging,
		bluesky.WithBaseURL(cfg.BlueskyBaseURL))
	renderer := rss.NewRenderer(cfg, logging)

	creator := services.NewPodcastCreator(cfg, logging, store, textGen, speech, poster, renderer, prompts, voices)
	if len(creator.EnabledSources()) == 0 {
		logging.Fatal("No sources enabled. Check ENABLED_SOURCES in .env")
	}
	logging.Info("Active sources loaded", zap.Strings("sources", creator.EnabledSources()))

	// Verhindert überlappende Läufe von Cron und HTTP-Trigger.
	var runMu sync.Mutex
	runPipeline := func() {
		if !runMu.TryLock() {
			logging.Warn("Pipeline already running, skipping this trigger")
			return
		}
		defer runMu.Unlock()

		outcome, err := creator.CreatePodcast(context.Background())
		if err != nil {
			logging.Error("Pipeline run failed", zap.String("outcome", outcome.String()), zap.Error(err))
			return
		}
		logging.Info("Pipeline run finished", zap.String("outcome", outcome.String()))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupEpisodeRoutes(router, cfg, store, logging)
	setupGenerateRoutes(router, runPipeline)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled episode generation...")
		runPipeline()
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupEpisodeRoutes konfiguriert lesende Endpunkte auf Episoden und Artikel.
// Die Datenbank liegt im Bucket; pro Anfrage wird eine Arbeitskopie geholt.
func setupEpisodeRoutes(router *gin.Engine, cfg *config.Config, store *storage.ObjectStore, log *zap.Logger) {
	withDatabase := func(c *gin.Context, fn func(db *storage.Database) (any, error)) {
		assistant := services.NewStorageAssistant(cfg, store, log)
		if err := assistant.Prepare(c.Request.Context()); err != nil {
			log.Error("Could not prepare database for query", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database unavailable"})
			return
		}
		defer assistant.Cleanup()

		result, err := fn(assistant.DB())
		if err != nil {
			log.Error("Database query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}

	router.GET("/episodes", func(c *gin.Context) {
		withDatabase(c, func(db *storage.Database) (any, error) {
			return db.AllEpisodes()
		})
	})

	router.GET("/articles", func(c *gin.Context) {
		withDatabase(c, func(db *storage.Database) (any, error) {
			return db.Articles()
		})
	})
}

// setupGenerateRoutes konfiguriert den asynchronen Pipeline-Trigger.
func setupGenerateRoutes(router *gin.Engine, runPipeline func()) {
	router.POST("/generate", func(c *gin.Context) {
		go runPipeline()
		c.JSON(http.StatusAccepted, gin.H{"message": "Episode generation triggered."})
	})
}
