package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/pkg/httpcontext"
)

// AccessLog logs one line per request and turns panics into 500 responses.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)
			ctx.Response.Header.Set("X-Request-ID", reqID)

			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic while serving request",
						zap.String("request_id", reqID),
						zap.Any("panic", rec),
						zap.Stack("stack"))
					ctx.ResetBody()
					ctx.Response.Header.SetContentType("application/json")
					ctx.SetStatusCode(fasthttp.StatusInternalServerError)
					ctx.SetBody(transport.NewError(string(domain.ErrCodeInternal), "internal error", nil).Marshal())
				}

				fields := []zap.Field{
					zap.String("request_id", reqID),
					zap.ByteString("method", ctx.Method()),
					zap.ByteString("path", ctx.Path()),
					zap.Int("status", ctx.Response.StatusCode()),
					zap.Duration("took", time.Since(start)),
				}
				if userID, ok := ctx.UserValue(httpcontext.UserValueUserID).(string); ok {
					fields = append(fields, zap.String("user_id", userID))
				}
				logger.Info("request", fields...)
			}()

			next(ctx)
		}
	}
}
