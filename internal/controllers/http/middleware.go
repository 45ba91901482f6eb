package http

import (
	"strings"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// TokenParser is satisfied by *auth.TokenManager.
type TokenParser interface {
	Parse(raw string) (domain.Actor, error)
}

// authenticate attaches the caller to the request when a token is present.
// Anonymous requests pass through; a malformed or expired token does not.
func authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}
		actor, err := tokens.Parse(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// bearer accepts both "Bearer <token>" and the "JWT <token>" scheme.
func bearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "jwt":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

// queryToken lets browser websocket clients, which cannot set headers, pass the token.
func queryToken(c *gin.Context) {
	if t := c.Query("token"); t != "" && c.GetHeader("Authorization") == "" {
		c.Request.Header.Set("Authorization", "Bearer "+t)
	}
	c.Next()
}

func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

func requireAuth(c *gin.Context) {
	if !actorFrom(c).Authenticated() {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	c.Next()
}

func requireStaff(c *gin.Context) {
	actor := actorFrom(c)
	switch {
	case !actor.Authenticated():
		writeError(c, domain.ErrUnauthenticated)
	case !actor.IsStaff:
		writeError(c, domain.ErrPermissionDenied)
	default:
		c.Next()
	}
}
