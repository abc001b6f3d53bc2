package http

import (
	_ "embed"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cspwatch/internal/domain"

	"github.com/gin-gonic/gin"
)

//go:embed index.html
var indexPage []byte

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleReport accepts a browser CSP report. Everything past JSON
// decoding is lossy by policy: rate-limited and buffer-contended
// submissions are dropped without the caller noticing.
func (s *Server) handleReport(c *gin.Context) {
	var payload domain.ReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if !s.allowIngest(c) {
		c.String(http.StatusOK, "OK")
		return
	}
	rec := domain.BufferedReport{
		Report:    payload.Report,
		CreatedAt: s.now().Truncate(time.Millisecond),
		SourceIP:  c.ClientIP(),
	}
	if !s.buffer.TryAppend(rec) {
		s.log.Debug("report buffer contended, report dropped")
	}
	c.String(http.StatusOK, "OK")
}

func (s *Server) allowIngest(c *gin.Context) bool {
	if s.limiter == nil || s.limitRequests <= 0 {
		return true
	}
	decision, err := s.limiter.Allow(c.Request.Context(), "ingest:"+c.ClientIP(), s.limitRequests, s.limitWindow)
	if err != nil {
		// Fail open: a broken limiter must not stop collection.
		s.log.Warn("rate limiter error", "err", err)
		return true
	}
	if !decision.Allowed {
		s.log.Debug("ingest rate limited", "ip", c.ClientIP())
	}
	return decision.Allowed
}

func (s *Server) handleGenToken(c *gin.Context) {
	raw, err := s.tokens.Issue(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, raw)
}

func (s *Server) handleListReports(c *gin.Context) {
	limit, ok := queryUint(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryUint(c, "offset")
	if !ok {
		return
	}
	reports, err := s.reports.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleDistinctReports(c *gin.Context) {
	limit, ok := queryUint(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryUint(c, "offset")
	if !ok {
		return
	}
	reports, err := s.reports.ListDistinct(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleViolationCount(c *gin.Context) {
	counts, err := s.reports.CountByDay(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleListTokens(c *gin.Context) {
	tokens, err := s.tokens.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) handleDeleteToken(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}
	tokens, err := s.tokens.Revoke(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// queryUint reads an optional non-negative integer query parameter. The
// second return is false when the request was already answered with a
// 400.
func queryUint(c *gin.Context, name string) (*uint32, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_QUERY", name+" must be a non-negative integer")
		return nil, false
	}
	u := uint32(v)
	return &u, true
}

func writeError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL", "internal error"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "not found"
	}
	writeErrorCode(c, status, code, message)
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
