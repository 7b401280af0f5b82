// Package api is the CLI's HTTP client for the questify server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/usecase/gamification"
	profileUC "github.com/fastygo/questify/usecase/profile"
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == fasthttp.StatusUnauthorized
}

// IsExpired reports whether a 401 was caused by an expired token or session
// rather than bad credentials.
func IsExpired(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != fasthttp.StatusUnauthorized {
		return false
	}
	if apiErr.Code == transport.CodeTokenExpired {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "token") || strings.Contains(msg, "expired") || strings.Contains(msg, "session")
}

type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &fasthttp.Client{Name: "questify-cli"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if status >= 300 {
			return &Error{Status: status, Message: strings.TrimSpace(string(resp.Body()))}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if status >= 300 || env.Status == "error" {
		return &Error{Status: status, Code: env.Code, Message: env.Error}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/auth/signup", "", transport.SignUpRequest{Email: email, Password: password, Name: name}, &out)
	return &out, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/auth/signin", "", transport.SignInRequest{Email: email, Password: password}, &out)
	return &out, err
}

func (c *Client) Refresh(ctx context.Context, token string) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/auth/refresh", token, nil, &out)
	return &out, err
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, fasthttp.MethodPost, "/api/v1/auth/signout", token, nil, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*profileUC.Snapshot, error) {
	var out profileUC.Snapshot
	err := c.do(ctx, fasthttp.MethodGet, "/api/v1/profile", token, nil, &out)
	return &out, err
}

func (c *Client) ListTasks(ctx context.Context, token, projectID string, completed *bool) ([]domain.Task, error) {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	if projectID != "" {
		args.Set("project_id", projectID)
	}
	if completed != nil {
		args.Set("completed", fmt.Sprint(*completed))
	}
	path := "/api/v1/tasks"
	if args.Len() > 0 {
		path += "?" + args.String()
	}
	var out []domain.Task
	err := c.do(ctx, fasthttp.MethodGet, path, token, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, token string, req transport.TaskRequest) (*domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/tasks", token, req, &out)
	return &out, err
}

func (c *Client) CompleteTask(ctx context.Context, token, id string, req transport.CompleteTaskRequest) (*gamification.Outcome, error) {
	var out gamification.Outcome
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/tasks/"+id+"/complete", token, req, &out)
	return &out, err
}

func (c *Client) Missions(ctx context.Context, token string) (*gamification.WeekMissions, error) {
	var out gamification.WeekMissions
	err := c.do(ctx, fasthttp.MethodGet, "/api/v1/missions", token, nil, &out)
	return &out, err
}

func (c *Client) CompleteMission(ctx context.Context, token, id string, completed bool) (*gamification.Outcome, error) {
	var out gamification.Outcome
	err := c.do(ctx, fasthttp.MethodPost, "/api/v1/missions/"+id+"/complete", token, transport.CompleteMissionRequest{Completed: &completed}, &out)
	return &out, err
}
