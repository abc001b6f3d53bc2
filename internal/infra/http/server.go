package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cspwatch/internal/config"
	"cspwatch/internal/domain"
	"cspwatch/internal/infra/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenAuthority is what the HTTP layer needs from the token service.
type TokenAuthority interface {
	Issue(ctx context.Context, supplied string) (string, error)
	Verify(ctx context.Context, presented string) error
	List(ctx context.Context) ([]domain.Token, error)
	Revoke(ctx context.Context, id int64) ([]domain.Token, error)
}

// ReportStore is the read side of the analytical store.
type ReportStore interface {
	ListReports(ctx context.Context, limit, offset *uint32) ([]domain.StoredReport, error)
	ListDistinct(ctx context.Context, limit, offset *uint32) ([]domain.DistinctReport, error)
	CountByDay(ctx context.Context) ([]domain.ViolationCount, error)
}

// ReportBuffer is the ingest side; appends never block on storage.
type ReportBuffer interface {
	TryAppend(rec domain.BufferedReport) bool
}

type Server struct {
	cfg config.Config
	r   *gin.Engine
	log *slog.Logger

	tokens  TokenAuthority
	reports ReportStore
	buffer  ReportBuffer

	limiter       domain.RateLimiter
	limitRequests int
	limitWindow   time.Duration

	now func() time.Time
}

type ServerDeps struct {
	Tokens      TokenAuthority
	Reports     ReportStore
	Buffer      ReportBuffer
	RateLimiter domain.RateLimiter
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		r:       r,
		log:     deps.Logger,
		tokens:  deps.Tokens,
		reports: deps.Reports,
		buffer:  deps.Buffer,
		now:     deps.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.initRateLimit(deps.RateLimiter)
	r.Use(s.requestID())
	s.routes()
	return s
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.limiter = override
	}
	if s.limiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.limiter = limiter
			}
		}
		if s.limiter == nil {
			s.limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.limitRequests = s.cfg.RateLimitRequests
	s.limitWindow = s.cfg.RateLimitWindow()
}

func (s *Server) routes() {
	s.r.GET("/", s.handleIndex)
	s.r.POST("/", s.handleReport)
	s.r.GET("/api", s.handleHealth)
	s.r.POST("/api/gen-token", s.handleGenToken)

	authed := s.r.Group("/api", s.requireToken())
	{
		authed.GET("/verify", s.handleHealth)
		authed.GET("/reports", s.handleListReports)
		authed.GET("/distinct-reports", s.handleDistinctReports)
		authed.GET("/violation-count", s.handleViolationCount)
		authed.GET("/tokens", s.handleListTokens)
		authed.DELETE("/token/:id", s.handleDeleteToken)
	}
}

// requestID tags every request for log correlation, honoring an id the
// caller already set.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

// Handler exposes the router for an http.Server and for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
