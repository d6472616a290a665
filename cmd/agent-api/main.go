package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
	"assistant-agent/internal/api/handlers"
	"assistant-agent/internal/auth"
	"assistant-agent/internal/briefing"
	"assistant-agent/internal/config"
	"assistant-agent/internal/crypto"
	"assistant-agent/internal/google"
	"assistant-agent/internal/hasura"
	"assistant-agent/internal/health"
	"assistant-agent/internal/logger"
	"assistant-agent/internal/matching"
	"assistant-agent/internal/msteams"
	"assistant-agent/internal/notion"
	"assistant-agent/internal/scheduler"
	"assistant-agent/internal/slack"
)

func main() {
	// Load and validate configuration first (before logger)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Logger)

	logger.Info().
		Str("environment", cfg.Logger.Environment).
		Str("log_level", cfg.Logger.Level).
		Msg("configuration loaded successfully")

	// Credential store: Hasura-backed, tokens encrypted at rest. Outside
	// production an ephemeral key keeps local runs working; stored tokens
	// will not survive a restart.
	encryptionKey := cfg.External.TokenEncryptionKey
	if encryptionKey == "" {
		encryptionKey, err = crypto.GenerateKey()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to generate ephemeral encryption key")
		}
		logger.Warn().Msg("TOKEN_ENCRYPTION_KEY not set, using ephemeral key")
	}
	encryptor, err := crypto.NewTokenEncryptor(encryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize token encryptor")
	}
	tokenStore := hasura.NewTokenStore(hasura.NewClient(cfg.Hasura), encryptor)

	// Google: OAuth plus the Calendar and Gmail collaborators.
	var (
		oauthHandler   *handlers.OAuthHandler
		calendarClient *google.CalendarClient
		gmailClient    *google.GmailClient
	)
	googleOAuth, err := google.NewOAuthService(cfg, tokenStore)
	if err != nil {
		logger.Warn().Err(err).Msg("Google integration disabled")
	} else {
		oauthHandler = handlers.NewOAuthHandler(googleOAuth)
		calendarClient = google.NewCalendarClient(googleOAuth)
		gmailClient = google.NewGmailClient(googleOAuth)
		logger.Info().Msg("Google OAuth service initialized")
	}

	var slackClient *slack.Client
	if cfg.Slack.BotToken != "" {
		slackClient = slack.NewClient(cfg.Slack.BotToken)
		logger.Info().Msg("Slack client initialized")
	}

	teamsClient := msteams.NewClient(cfg.MSTeams, tokenStore)

	var notionClient *notion.Client
	if cfg.Notion.APIKey != "" && cfg.Notion.TasksDatabaseID != "" {
		notionClient = notion.NewClient(cfg.Notion)
		logger.Info().Msg("Notion client initialized")
	}

	// Briefing sources stay nil when the integration is not configured so
	// the service reports them instead of calling a dead client.
	var (
		calendarSource briefing.CalendarSource
		emailSource    briefing.EmailSource
		taskSource     briefing.TaskSource
		slackSource    briefing.SlackSource
	)
	if calendarClient != nil {
		calendarSource = calendarClient
		emailSource = gmailClient
	}
	if notionClient != nil {
		taskSource = notionClient
	}
	if slackClient != nil {
		slackSource = slackClient
	}

	briefingService := briefing.NewService(
		calendarSource,
		taskSource,
		emailSource,
		slackSource,
		teamsClient,
		briefing.NewScorer(briefing.DefaultScorerConfig),
	)

	var finder *matching.Finder
	if calendarClient != nil {
		finder = matching.NewFinder(calendarClient, matching.DefaultFinderConfig)
	}

	// Scheduler delivers morning briefings over Slack DM.
	if len(cfg.Briefing.UserIDs) > 0 && slackClient != nil {
		cronScheduler := scheduler.NewScheduler(briefingService, slackClient, cfg.Briefing)
		if err := cronScheduler.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start scheduler")
		}
		defer cronScheduler.Stop()
	}

	if cfg.Logger.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.ErrorHandlerMiddleware())

	router.GET("/healthz", health.HealthHandler)

	// OAuth callback route (no auth - called by the Google redirect)
	if oauthHandler != nil {
		router.GET("/api/v1/auth/google/callback", oauthHandler.GoogleCallback)
	}

	v1 := router.Group("/api/v1")
	v1.Use(auth.APIKeyMiddleware(cfg))
	{
		if oauthHandler != nil {
			v1.GET("/auth/google", oauthHandler.GetGoogleAuthURL)
		}

		skills := v1.Group("/skills")
		{
			skills.POST("/briefing", handlers.NewBriefingHandler(briefingService).GenerateBriefing)

			if finder != nil {
				skills.POST("/find-event", handlers.NewFindEventHandler(finder).FindEvent)
			}
			if notionClient != nil {
				skills.POST("/create-task", handlers.NewTaskHandler(notionClient).CreateTask)
			}
			if slackClient != nil {
				skills.POST("/send-slack-message", handlers.NewSlackMessageHandler(slackClient).SendMessage)
			}
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
