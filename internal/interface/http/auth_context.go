package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/twilight-hud/internal/domain/auth"
)

type callerKey struct{}

// withCaller attaches validated claims to the request context, so handlers
// and the service calls they make with c.Request.Context() see the caller.
func withCaller(c *gin.Context, claims auth.Claims) {
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), callerKey{}, claims))
}

func callerFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(callerKey{}).(auth.Claims)
	return claims, ok
}

// callerSubject is empty for anonymous requests.
func callerSubject(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	claims, _ := callerFromContext(c.Request.Context())
	return claims.Subject
}
