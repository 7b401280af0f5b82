package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/questify/api/transport"
)

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		expired bool
		unauth  bool
	}{
		{"token expired code", &Error{Status: 401, Code: transport.CodeTokenExpired}, true, true},
		{"session message", &Error{Status: 401, Code: "UNAUTHORIZED", Message: "Session not found"}, true, true},
		{"bad credentials", &Error{Status: 401, Code: "UNAUTHORIZED", Message: "invalid email or password"}, false, true},
		{"not a 401", &Error{Status: 409, Code: transport.CodeTokenExpired}, false, false},
		{"transport error", errors.New("dial tcp: refused"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpired(tt.err); got != tt.expired {
				t.Fatalf("IsExpired = %v", got)
			}
			if got := IsUnauthorized(tt.err); got != tt.unauth {
				t.Fatalf("IsUnauthorized = %v", got)
			}
		})
	}
}

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	c := New("http://questify.test/", time.Second)
	c.http.Dial = func(string) (net.Conn, error) { return ln.Dial() }
	return c
}

func TestClientDecodesEnvelope(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		gotAuth = string(ctx.Request.Header.Peek("Authorization"))
		gotPath = string(ctx.Path())
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"success","data":{"week_id":"2026-W43","missions":[{"id":"m1","position":1,"title":"Run"}],"generated":true}}`)
	})

	week, err := c.Missions(context.Background(), "tok")
	if err != nil {
		t.Fatalf("missions: %v", err)
	}
	if gotAuth != "Bearer tok" || gotPath != "/api/v1/missions" {
		t.Fatalf("request = %q %q", gotAuth, gotPath)
	}
	if week.WeekID != "2026-W43" || len(week.Missions) != 1 || !week.Generated {
		t.Fatalf("week = %+v", week)
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBody(transport.NewError(transport.CodeTokenExpired, "token expired", nil).Marshal())
	})

	_, err := c.Profile(context.Background(), "stale")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Status != 401 || apiErr.Code != transport.CodeTokenExpired || apiErr.Message != "token expired" {
		t.Fatalf("api error = %+v", apiErr)
	}
	if !IsExpired(err) {
		t.Fatal("expected expired")
	}
}

func TestClientNoContent(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})
	if err := c.SignOut(context.Background(), "tok"); err != nil {
		t.Fatalf("sign out: %v", err)
	}
}
