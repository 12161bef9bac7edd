package middleware

import (
	"context"
	"net/http"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/modules/serializer"
	"github.com/devfolio-io/devfolio/internal/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const sessionKey = "session"

// SessionLookup is the part of the auth provider the gate needs.
type SessionLookup interface {
	GetSession(ctx context.Context, cookieHeader string) (*authprovider.Session, error)
}

// SessionGate protects page routes. Requests without a valid session, and
// requests for which the provider could not answer, are redirected to
// signInPath. Nothing is cached and nothing is retried.
func SessionGate(p SessionLookup, signInPath string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolveSession(c, p, log) {
			c.Redirect(http.StatusFound, signInPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionRequired is SessionGate for JSON routes: it answers 401 instead of redirecting.
func SessionRequired(p SessionLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolveSession(c, p, log) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(""))
			return
		}
		c.Next()
	}
}

func resolveSession(c *gin.Context, p SessionLookup, log *zap.Logger) bool {
	ctx, span := otel.Tracer("middleware").Start(c.Request.Context(), "session_gate",
		trace.WithAttributes(attribute.String("middleware", "session_gate")))
	defer span.End()

	s, err := p.GetSession(ctx, c.GetHeader("Cookie"))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("authenticated", false))
		telemetry.RecordSessionGate(ctx, "provider_error")
		if log != nil {
			log.Warn("session lookup failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		return false
	}
	if s == nil {
		span.SetAttributes(attribute.Bool("authenticated", false))
		telemetry.RecordSessionGate(ctx, "absent")
		return false
	}

	span.SetAttributes(attribute.Bool("authenticated", true), attribute.String("user_id", s.UserID))
	telemetry.RecordSessionGate(ctx, "ok")
	c.Set(sessionKey, s)
	return true
}

// SessionFrom returns the session stored by SessionGate or SessionRequired.
func SessionFrom(c *gin.Context) (*authprovider.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*authprovider.Session)
	return s, ok
}
