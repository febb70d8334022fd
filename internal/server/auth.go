package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/mathdrill/internal/identity"
)

const principalKey = "principal"

// tokenFrom reads the Authorization header, falling back to the token
// query parameter for websocket clients that cannot set headers.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return h
	}
	return r.URL.Query().Get("token")
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.cfg.Tokens.Verify(tokenFrom(c.Request))
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// optionalAuth attaches the principal when a token is present. A present
// but invalid token is still rejected.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.cfg.Tokens.Verify(tokenFrom(c.Request))
		switch identity.Kind(err) {
		case identity.KindNone:
			c.Set(principalKey, p)
		case identity.KindMissingToken:
		default:
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Message: "Unauthorized",
		Code:    identity.Kind(err).String(),
	})
}
