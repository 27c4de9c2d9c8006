// Package restapi mirrors the MCP tool surface as a gin HTTP API, for
// callers that would rather speak REST than JSON-RPC-over-stdio. It holds
// no domain logic of its own — every handler delegates straight to the
// same store/search/writepipeline/sysstate packages the MCP adapter uses,
// and projects responses through internal/itemwire so the embedding vector
// never reaches either wire format (spec invariant P7).
package restapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/ratelimit"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/store"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/sysstate"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/writepipeline"
)

// Deps are the Server's constructor dependencies.
type Deps struct {
	DB           *store.Store
	Pipeline     *writepipeline.Pipeline
	SysState     *sysstate.Service
	EmbeddingDim int
	CORS         bool
	APIKey       string
	AllowOrigins []string
	RateLimiter  *ratelimit.Limiter // nil disables rate limiting
}

// Server is the REST mirror's HTTP server.
type Server struct {
	router       *gin.Engine
	httpServer   *http.Server
	db           *store.Store
	pipeline     *writepipeline.Pipeline
	sysState     *sysstate.Service
	embeddingDim int
	log          *logging.Logger
}

// NewServer builds the gin router and registers every route. Routes are
// live the moment this returns; Run starts serving.
func NewServer(deps Deps) *Server {
	log := logging.GetLogger("restapi")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	if deps.CORS {
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
			ExposeHeaders: []string{"Content-Length", "Retry-After"},
			MaxAge:        12 * time.Hour,
		}
		switch {
		case len(deps.AllowOrigins) > 0:
			corsConfig.AllowOrigins = deps.AllowOrigins
		case deps.APIKey != "":
			corsConfig.AllowOrigins = []string{
				"http://localhost:*", "http://127.0.0.1:*",
				"https://localhost:*", "https://127.0.0.1:*",
			}
			corsConfig.AllowWildcard = true
		default:
			corsConfig.AllowAllOrigins = true
		}
		router.Use(cors.New(corsConfig))
	}

	if deps.APIKey != "" {
		router.Use(APIKeyAuthMiddleware(deps.APIKey))
	}
	if deps.RateLimiter != nil {
		router.Use(RateLimitMiddleware(deps.RateLimiter))
	}
	router.Use(MaxBodySizeMiddleware(DefaultBodyLimit))

	s := &Server{
		router:       router,
		db:           deps.DB,
		pipeline:     deps.Pipeline,
		sysState:     deps.SysState,
		embeddingDim: deps.EmbeddingDim,
		log:          log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		api.GET("/health", s.health)

		api.POST("/items", s.createItem)
		api.GET("/items", s.listItems)
		api.GET("/items/search", s.searchItems)
		api.GET("/items/:id", s.getItem)
		api.PATCH("/items/:id", s.updateItem)
		api.DELETE("/items/:id", s.deleteItem)
		api.GET("/items/:id/related", s.getRelatedItems)
		api.GET("/items/:id/similar", s.findSimilarItems)

		api.POST("/relations", s.addRelations)
		api.DELETE("/relations", s.removeRelation)

		api.GET("/tags", s.getTags)
		api.PATCH("/tags/:id", s.renameTag)
		api.GET("/stats", s.getStats)

		api.DELETE("/vocab/:kind/:id", s.deleteVocab)
		api.GET("/vocab/garbage", s.getGarbageVocab)

		api.GET("/state", s.getCurrentState)
		api.PUT("/state", s.updateCurrentState)
		api.POST("/state/checkpoint", s.checkpoint)
	}
}

func (s *Server) health(c *gin.Context) {
	SuccessResponse(c, gin.H{"status": "ok"})
}

// Router exposes the underlying gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves the REST API until ctx is canceled, then shuts down
// gracefully (mirrors the MCP adapter's ctx-driven lifecycle in
// internal/mcpadapter/server.go's Run).
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("starting REST API server", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
