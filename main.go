package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pageinsight/backend/analyzer"
	"github.com/pageinsight/backend/config"
	"github.com/pageinsight/backend/fetch"
	"github.com/pageinsight/backend/history"
	"github.com/pageinsight/backend/logging"
	"github.com/pageinsight/backend/middleware"
	"github.com/pageinsight/backend/monitoring"
	"github.com/pageinsight/backend/report"
	"github.com/pageinsight/backend/usage"
	"github.com/pageinsight/backend/vitals"
)

// sessionCookie carries the opaque token that selects a caller's
// history log. It never affects analysis output.
const sessionCookie = "pi_session"

type server struct {
	fetcher      *fetch.Fetcher
	vitalsClient *vitals.Client
	composer     *report.Composer
	registry     *history.Registry
	usage        *usage.Storage
	logger       *slog.Logger
}

func setupGinMode(mode string) {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func main() {
	cfg := config.Load()
	logger := logging.Init(os.Stdout, cfg.LogLevel)
	setupGinMode(cfg.GinMode)
	monitoring.Init()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	usageStorage, err := usage.NewStorage(cfg.DataDir)
	if err != nil {
		logger.Error("failed to initialize usage storage", "error", err)
		os.Exit(1)
	}

	var generator report.Generator
	if cfg.AnthropicAPIKey != "" {
		generator = report.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, reports use heuristic scoring only")
	}

	srv := &server{
		fetcher:      fetch.New(cfg.FetchTimeout),
		vitalsClient: vitals.NewClient(cfg.PageSpeedAPIKey, cfg.PageSpeedStrategy, logger),
		composer:     report.NewComposer(generator, cfg.AnthropicMaxTokens, logger),
		registry:     history.NewRegistry(history.NewRedisPersister(redisClient), logger),
		usage:        usageStorage,
		logger:       logger,
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(monitoring.Middleware())
	r.Use(rateLimiter.RateLimit())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/analyze", srv.analyzeURL)
		api.GET("/history", srv.listHistory)
		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, usageStorage.GetCurrentUsage())
		})
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("server starting", "port", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// sessionKey reads the caller's session token, minting and setting a
// fresh one when absent.
func (s *server) sessionKey(c *gin.Context) string {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		token = uuid.NewString()
		c.SetCookie(sessionCookie, token, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	}
	return token
}

func (s *server) analyzeURL(c *gin.Context) {
	var request struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !strings.HasPrefix(request.URL, "http://") && !strings.HasPrefix(request.URL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must start with http:// or https://"})
		return
	}
	parsed, err := url.Parse(request.URL)
	if err != nil || parsed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	// The measurement call only needs the URL, so it runs alongside the
	// page fetch. The composer needs its result for the prompt.
	vitalsCh := make(chan vitals.CoreWebVitals, 1)
	go func() {
		vitalsCh <- s.vitalsClient.Measure(ctx, request.URL)
	}()

	markup, err := s.fetcher.Fetch(ctx, request.URL)
	if err != nil {
		s.usage.TrackError()
		monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeFailed).Inc()
		s.logger.Warn("page fetch failed", "url", request.URL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch the page: " + err.Error()})
		return
	}

	pageMetrics := analyzer.Extract(markup, parsed)
	cwv := <-vitalsCh
	a, generated := s.composer.Compose(ctx, pageMetrics, cwv)
	rep := report.New(pageMetrics, a)

	store := s.registry.ForKey(s.sessionKey(c))
	if err := store.Add(ctx, rep); err != nil {
		s.usage.TrackError()
		monitoring.AnalysesTotal.WithLabelValues(monitoring.OutcomeFailed).Inc()
		s.logger.Error("failed to persist report", "url", request.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save the report"})
		return
	}

	outcome := monitoring.OutcomeGenerated
	if !generated {
		outcome = monitoring.OutcomeFallback
	}
	monitoring.AnalysesTotal.WithLabelValues(outcome).Inc()
	monitoring.AnalysisDuration.Observe(time.Since(start).Seconds())
	s.usage.TrackAnalysis(!generated, cwv.Source == vitals.SourceMeasured)

	s.logger.Info("analysis complete",
		"url", request.URL,
		"seo_score", a.Scores.SEO,
		"vitals_source", cwv.Source,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.JSON(http.StatusOK, rep)
}

func (s *server) listHistory(c *gin.Context) {
	store := s.registry.ForKey(s.sessionKey(c))
	reports, err := store.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, reports)
}
