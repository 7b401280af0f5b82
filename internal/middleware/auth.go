package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/pkg/httpcontext"
)

// Authenticator verifies a bearer token against its server session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// UserValueSessionID holds the server session id of the caller.
const UserValueSessionID = "session_id"

// Auth rejects requests without a live session. Expired tokens and sessions
// answer with code TOKEN_EXPIRED so clients can tell them from bad credentials.
func Auth(auth Authenticator, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			if token == "" {
				reject(ctx, domain.ErrUnauthorized)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			session, err := auth.Authenticate(stdCtx, token)
			cancel()
			if err != nil {
				if !errors.Is(err, domain.ErrTokenExpired) && !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("session lookup failed", zap.Error(err))
				} else {
					logger.Debug("rejected bearer token", zap.Error(err))
				}
				reject(ctx, err)
				return
			}

			ctx.SetUserValue(httpcontext.UserValueUserID, session.UserID)
			ctx.SetUserValue(UserValueSessionID, session.ID)
			next(ctx)
		}
	}
}

func reject(ctx *fasthttp.RequestCtx, err error) {
	status, code := transport.StatusFor(err)
	ctx.Response.Header.SetContentType("application/json")
	if status == fasthttp.StatusUnauthorized {
		ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="questify"`)
	}
	ctx.SetStatusCode(status)
	ctx.SetBody(transport.NewError(code, transport.PublicMessage(err), nil).Marshal())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
