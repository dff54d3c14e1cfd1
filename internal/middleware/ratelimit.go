package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/api/transport"
	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

// RateLimit throttles mutating endpoints per caller. The key prefers the
// authenticated user and falls back to the client IP. A limiter outage fails
// open: refusing all writes because Redis is down would hurt more than a
// burst slipping through.
func RateLimit(limiter repository.RateLimiter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if limiter == nil {
				next(ctx)
				return
			}

			key := string(ctx.Request.Header.Peek("X-User-ID"))
			if key == "" {
				key = ctx.RemoteIP().String()
			}

			allowed, err := limiter.Consume(ctx, key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
				next(ctx)
				return
			}
			if !allowed {
				envelope := transport.NewError(string(domain.ErrCodeRateLimited), "too many requests, slow down", nil)
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(http.StatusTooManyRequests)
				body, _ := json.Marshal(envelope)
				ctx.SetBody(body)
				return
			}

			next(ctx)
		}
	}
}
