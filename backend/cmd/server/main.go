package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ad-rewriter/backend/internal/adapter"
	"ad-rewriter/backend/internal/agent"
	"ad-rewriter/backend/internal/graph"
	"ad-rewriter/backend/internal/strategy"
	"ad-rewriter/backend/pkg/config"
	apperrors "ad-rewriter/backend/pkg/errors"
	"ad-rewriter/backend/pkg/logger"
)

func main() {
	// Initialize logger
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Wire dependencies once; everything downstream is injected.
	repo := graph.NewRepository(driver, cfg.Neo4jURI, cfg.PoolMaxSessions, cfg.PoolAcquireTimeout)
	defer repo.Close(context.Background())

	cache := strategy.NewCache(cfg.CacheCapacity)
	resolver := strategy.NewResolver(repo, strategy.Weights{
		Platform: cfg.PlatformWeight,
		Audience: cfg.AudienceWeight,
		Intent:   cfg.IntentWeight,
	})
	strategies := strategy.NewService(cache, resolver)
	rewriter := adapter.NewRewriteAdapter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID)
	orchestrator := agent.NewOrchestrator(strategies, rewriter)

	router := newRouter(cfg, log, strategies, orchestrator)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// rewriteRequest is the POST /api/rewrite body. The include flags are
// pointers so an absent field defaults to true rather than false.
type rewriteRequest struct {
	Text                        string            `json:"text" binding:"required"`
	TargetPlatforms             []string          `json:"target_platforms" binding:"required"`
	Audience                    string            `json:"audience"`
	UserIntent                  string            `json:"user_intent"`
	ProductCategory             string            `json:"product_category"`
	ToneMap                     map[string]string `json:"tone_map"`
	LengthPrefs                 map[string]int    `json:"length_prefs"`
	IncludeStrategyInsights     *bool             `json:"include_strategy_insights"`
	SuggestAlternativePlatforms *bool             `json:"suggest_alternative_platforms"`
}

func (r *rewriteRequest) toAgentRequest() *agent.Request {
	req := &agent.Request{
		Text:                        r.Text,
		TargetPlatforms:             r.TargetPlatforms,
		Audience:                    r.Audience,
		UserIntent:                  r.UserIntent,
		ProductCategory:             r.ProductCategory,
		ToneMap:                     r.ToneMap,
		LengthPrefs:                 r.LengthPrefs,
		IncludeStrategyInsights:     true,
		SuggestAlternativePlatforms: true,
	}
	if r.IncludeStrategyInsights != nil {
		req.IncludeStrategyInsights = *r.IncludeStrategyInsights
	}
	if r.SuggestAlternativePlatforms != nil {
		req.SuggestAlternativePlatforms = *r.SuggestAlternativePlatforms
	}
	return req
}

func newRouter(cfg *config.Config, log *zap.Logger, strategies *strategy.Service, orchestrator *agent.Orchestrator) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Rewrite a piece of content for a set of platforms
		api.POST("/rewrite", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req rewriteRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			resp, err := orchestrator.RunBatch(ctx, req.toAgentRequest())
			if err != nil {
				if errors.Is(err, agent.ErrNoPlatforms) {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				log.Error("Failed to run rewrite batch", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
				return
			}

			c.JSON(http.StatusOK, resp)
		})

		// Resolve a single platform strategy without rewriting
		api.GET("/strategy/:platform", func(c *gin.Context) {
			ctx := c.Request.Context()
			key := strategy.NewKey(
				c.Param("platform"),
				c.Query("audience"),
				c.Query("user_intent"),
				c.Query("product_category"),
			)

			result, err := strategies.Resolve(ctx, key)
			if err != nil {
				if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Platform not found"})
					return
				}
				log.Error("Failed to resolve strategy", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve strategy"})
				return
			}

			c.JSON(http.StatusOK, result)
		})

		// Cache observability
		api.GET("/cache/stats", func(c *gin.Context) {
			hits, misses, evictions := strategies.CacheStats()
			c.JSON(http.StatusOK, gin.H{
				"hits":      hits,
				"misses":    misses,
				"evictions": evictions,
			})
		})
	}

	return router
}

// requestID tags every request with a correlation ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
