package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/usecase"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/v1/messages"
	DefaultModel   = "claude-3-5-haiku-latest"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client asks an Anthropic model for task rewards and weekly missions.
// Without an API key every call fails with an UNAVAILABLE domain error.
type Client struct {
	http     *fasthttp.Client
	apiKey   string
	baseURL  string
	model    string
	timeout  time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

var _ usecase.Suggester = (*Client)(nil)

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:         "questify",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		validate: validator.New(),
		logger:   logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type taskXPReply struct {
	XP int `json:"xp" validate:"min=10,max=150"`
}

type missionsReply struct {
	Missions []domain.MissionDraft `json:"missions" validate:"len=7,dive"`
}

func (c *Client) SuggestTaskXP(ctx context.Context, req usecase.TaskXPRequest) (int, error) {
	prompt := buildTaskPrompt(req)
	text, err := c.complete(ctx, taskSystemPrompt, prompt)
	if err != nil {
		return 0, err
	}
	var reply taskXPReply
	if err := c.decode(text, &reply); err != nil {
		return 0, err
	}
	return reply.XP, nil
}

func (c *Client) SuggestWeeklyMissions(ctx context.Context, req usecase.MissionRequest) ([]domain.MissionDraft, error) {
	prompt := buildMissionPrompt(req)
	text, err := c.complete(ctx, missionSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	var reply missionsReply
	if err := c.decode(text, &reply); err != nil {
		return nil, err
	}
	return reply.Missions, nil
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if !c.Enabled() {
		return "", domain.ErrSuggestionFailed
	}

	body, err := json.Marshal(messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.SetBody(body)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		c.logger.Warn("suggestion request failed", zap.Error(err))
		return "", domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, err)
	}
	c.logger.Debug("suggestion request completed",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message,
			fmt.Errorf("api status %d: %s", resp.StatusCode(), truncate(string(resp.Body()), 300)))
	}

	var decoded messageResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return "", domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, err)
	}
	var sb strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, errors.New("empty response content"))
	}
	return sb.String(), nil
}

// decode pulls the JSON object out of the model reply and validates it.
func (c *Client) decode(text string, out any) error {
	raw, err := extractJSON(text)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, fmt.Errorf("parse reply: %w", err))
	}
	if err := c.validate.Struct(out); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, domain.ErrSuggestionFailed.Message, fmt.Errorf("reply out of range: %w", err))
	}
	return nil
}

// extractJSON strips code fences and surrounding prose from a model reply.
func extractJSON(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no json object in reply: %s", truncate(text, 120))
	}
	return cleaned[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
