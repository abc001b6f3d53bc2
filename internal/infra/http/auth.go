package http

import (
	"errors"
	"net/http"

	"cspwatch/internal/domain"

	"github.com/gin-gonic/gin"
)

// requireToken gates the read endpoints. The Authorization header
// carries the raw token with no scheme prefix; a missing header, a
// malformed token and an unknown hash all collapse to the same 401.
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}
		if err := s.tokens.Verify(c.Request.Context(), header); err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				abortUnauthorized(c)
				return
			}
			s.log.Error("token verification failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
				Code:    "INTERNAL",
				Message: "internal error",
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
		Code:    "UNAUTHORIZED",
		Message: "unauthorized",
	})
}
