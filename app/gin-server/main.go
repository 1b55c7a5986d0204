package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/atelia/agentdesk/config"
	"github.com/atelia/agentdesk/internal/api/handlers"
	"github.com/atelia/agentdesk/internal/api/middleware"
	"github.com/atelia/agentdesk/internal/api/routes"
	"github.com/atelia/agentdesk/internal/cache"
	"github.com/atelia/agentdesk/internal/logger"
	"github.com/atelia/agentdesk/internal/models"
	"github.com/atelia/agentdesk/internal/providers/llm"
	pgrepo "github.com/atelia/agentdesk/internal/repositories/postgres"
	"github.com/atelia/agentdesk/internal/services"
	"github.com/atelia/agentdesk/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Clients are constructed here and injected; nothing connects at
	// import time.
	db, err := config.NewPostgres()
	if err != nil {
		log.WithError(err).Fatal("postgres init failed")
	}
	if err := db.AutoMigrate(
		&models.Agent{},
		&models.AgentConfig{},
		&models.Conversation{},
		&models.Message{},
		&models.AppSetting{},
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("postgres connected")

	var store cache.Cache
	if rdb, err := config.NewRedis(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable, running uncached")
	} else if rdb != nil {
		store = cache.NewRedisCache(rdb)
		log.Info("redis connected")
	}

	var bucket *storage.GCSBucket
	if name := os.Getenv("SOURCES_BUCKET"); name != "" {
		var opts []option.ClientOption
		if creds := os.Getenv("GCS_CREDENTIALS_FILE"); creds != "" {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
		bucket, err = storage.NewGCSBucket(ctx, name, opts...)
		if err != nil {
			log.WithError(err).Fatal("gcs init failed")
		}
		defer bucket.Close()
		log.WithField("bucket", name).Info("gcs connected")
	} else {
		log.Warn("SOURCES_BUCKET not set; file sources disabled")
	}

	provider, err := newProvider(ctx)
	if err != nil {
		log.WithError(err).Fatal("llm provider init failed")
	}
	defer provider.Close()

	agentRepo := pgrepo.NewAgentRepo(db)
	configRepo := pgrepo.NewAgentConfigRepo(db)
	conversationRepo := pgrepo.NewConversationRepo(db)
	messageRepo := pgrepo.NewMessageRepo(db)
	settingRepo := pgrepo.NewSettingRepo(db)

	var downloader storage.Downloader
	var uploader storage.Uploader
	if bucket != nil {
		downloader = bucket
		uploader = bucket
	}

	turnSvc := services.NewTurnService(agentRepo, configRepo, messageRepo, settingRepo, downloader, provider, store, log)
	conversationSvc := services.NewConversationService(conversationRepo, messageRepo, agentRepo, configRepo)
	agentSvc := services.NewAgentService(agentRepo, store)
	agentConfigSvc := services.NewAgentConfigService(agentRepo, configRepo)
	settingsSvc := services.NewSettingsService(settingRepo, store)
	sourceSvc := services.NewSourceService(uploader)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(os.Getenv("CORS_ORIGIN")))
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Chat:         handlers.NewChatHandler(turnSvc),
		Conversation: handlers.NewConversationHandler(conversationSvc),
		Agent:        handlers.NewAgentHandler(agentSvc, agentConfigSvc, sourceSvc),
		Admin:        handlers.NewAdminHandler(agentSvc, settingsSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func newProvider(ctx context.Context) (llm.Provider, error) {
	switch strings.ToLower(os.Getenv("LLM_PROVIDER")) {
	case "", "mistral":
		return llm.NewMistral(os.Getenv("MISTRAL_API_KEY"))
	case "vertex":
		return llm.NewVertexGemini(ctx,
			os.Getenv("GCP_PROJECT"),
			os.Getenv("GCP_LOCATION"),
			os.Getenv("VERTEX_MODEL"))
	default:
		return nil, errors.New("LLM_PROVIDER must be 'mistral' or 'vertex'")
	}
}
