package middleware

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/domain"
)

// SessionChecker confirms that the session a token references is still live.
// Logout deletes the session, which revokes the token even before it expires.
type SessionChecker interface {
	ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// JWTAuth validates the bearer token, confirms its session is still live and
// forwards the identity it encodes to handlers via internal headers.
// Client-supplied values for those headers are always overwritten.
func JWTAuth(secret string, sessions SessionChecker, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del("X-User-ID")
			ctx.Request.Header.Del("X-Session-ID")

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			var userID, sessionID string
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				userID, _ = claims["user_id"].(string)
				sessionID, _ = claims["session_id"].(string)
			}

			if sessions != nil {
				if sessionID == "" {
					ctx.SetStatusCode(fasthttp.StatusUnauthorized)
					return
				}
				if _, err := sessions.ValidateSession(ctx, sessionID); err != nil {
					logger.Warn("session rejected", zap.String("session_id", sessionID), zap.Error(err))
					ctx.SetStatusCode(fasthttp.StatusUnauthorized)
					return
				}
			}

			if userID != "" {
				ctx.Request.Header.Set("X-User-ID", userID)
			}
			if sessionID != "" {
				ctx.Request.Header.Set("X-Session-ID", sessionID)
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
