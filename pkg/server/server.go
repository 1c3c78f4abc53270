package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/adapter"
	"github.com/m-mizutani/medscan/pkg/model"
	"github.com/m-mizutani/medscan/pkg/usecase/identify"
	"github.com/m-mizutani/medscan/pkg/utils/logging"
)

const (
	geminiAPIKeyEnv = "GEMINI_API_KEY"

	// upstreamTimeout bounds the call to the external model so a stuck
	// upstream cannot hang the request forever
	upstreamTimeout = 30 * time.Second
)

// GeminiFactory builds a Gemini adapter from the per-request credential
type GeminiFactory func(ctx context.Context, apiKey string) (adapter.Gemini, error)

// Server is the stateless identification proxy. Each request is independent:
// the credential is resolved and the upstream client built per invocation,
// nothing is shared across requests.
type Server struct {
	engine    *gin.Engine
	model     string
	apiKey    func() string
	newGemini GeminiFactory
}

// Option is a functional option for Server
type Option func(*Server)

// WithModel sets the generative model name
func WithModel(name string) Option {
	return func(s *Server) {
		s.model = name
	}
}

// WithAPIKeyLookup overrides how the credential is resolved
func WithAPIKeyLookup(lookup func() string) Option {
	return func(s *Server) {
		s.apiKey = lookup
	}
}

// WithGeminiFactory overrides the upstream adapter construction
func WithGeminiFactory(factory GeminiFactory) Option {
	return func(s *Server) {
		s.newGemini = factory
	}
}

// New creates the proxy server and registers its routes
func New(opts ...Option) *Server {
	s := &Server{
		apiKey: func() string { return os.Getenv(geminiAPIKeyEnv) },
	}
	s.newGemini = func(ctx context.Context, apiKey string) (adapter.Gemini, error) {
		geminiOpts := []adapter.GeminiOption{}
		if s.model != "" {
			geminiOpts = append(geminiOpts, adapter.WithGenerativeModel(s.model))
		}
		return adapter.NewGemini(ctx, apiKey, geminiOpts...)
	}

	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/api/v1/identify", s.handleIdentify)
	engine.GET("/api/v1/identify", s.handleStatus)
	engine.OPTIONS("/api/v1/identify", s.handleOptions)

	s.engine = engine
	return s
}

// Handler exposes the underlying handler for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logging.From(ctx).Info("identification proxy started", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shut down server")
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return goerr.Wrap(err, "server stopped unexpectedly")
		}
		return nil
	}
}

// addCORSHeaders attaches the permissive cross-origin headers every response
// must carry.
func addCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

func (s *Server) handleOptions(c *gin.Context) {
	addCORSHeaders(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStatus(c *gin.Context) {
	addCORSHeaders(c)
	c.String(http.StatusOK, "medicine identification proxy is running")
}

func (s *Server) handleIdentify(c *gin.Context) {
	addCORSHeaders(c)

	scanID := model.NewScanID()
	ctx := c.Request.Context()
	logger := logging.From(ctx).With("scan_id", string(scanID))
	ctx = logging.With(ctx, logger)

	var req struct {
		ImageBase64 string `json:"imageBase64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	// The credential is resolved per request and never cached, so a key
	// rotation takes effect without a restart. Its absence is a deployment
	// fault; the response must not hint at the key itself.
	apiKey := s.apiKey()
	if apiKey == "" {
		logger.Error("gemini API key is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error: API key missing"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	gemini, err := s.newGemini(ctx, apiKey)
	if err != nil {
		logger.Error("failed to create gemini client", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to reach identification model",
			"details": "Check server logs",
		})
		return
	}

	record, err := identify.New(gemini).Identify(ctx, req.ImageBase64)
	if err != nil {
		logger.Error("identification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"details": "Check server logs",
		})
		return
	}

	logger.Info("identification complete",
		"medicine_name", record.MedicineName, "confidence", record.Confidence)
	c.JSON(http.StatusOK, record)
}
