package middleware

import (
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLogRecoversPanic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := AccessLog(zap.New(core))(func(*fasthttp.RequestCtx) {
		panic("boom")
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/tasks")
	ctx.Request.Header.Set("X-Request-ID", "req-42")
	handler(ctx)

	if ctx.Response.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Response.Header.Peek("X-Request-ID")); got != "req-42" {
		t.Fatalf("request id = %q", got)
	}
	if n := logs.FilterMessage("panic while serving request").Len(); n != 1 {
		t.Fatalf("panic logged %d times", n)
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 || entries[0].ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Fatalf("access log = %+v", entries)
	}
}

func TestAccessLogRecordsUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := AccessLog(zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		ctx.SetUserValue("user_id", "u1")
		ctx.SetStatusCode(http.StatusNoContent)
	})
	handler(&fasthttp.RequestCtx{})

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "u1" || fields["status"] != int64(http.StatusNoContent) {
		t.Fatalf("fields = %v", fields)
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Fatal("request id not minted")
	}
}
