package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"onboard/internal/platform/config"
	"onboard/internal/platform/metrics"
	"onboard/pkg/email"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to an OpenAI-compatible chat completions endpoint in JSON mode.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds the assistant client. An empty API key yields a client that is
// permanently in fallback mode; callers never need a nil check.
func New(cfg config.AssistantConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: timeout},
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) Normalize(ctx context.Context, snapshot Snapshot) NormalizeResult {
	if !c.Configured() {
		c.fallback(ctx, "normalize", nil)
		return FallbackNormalize()
	}

	safe := make(Snapshot, len(snapshot))
	for k, v := range snapshot {
		safe[k] = v
	}
	if addr, ok := safe["email"]; ok {
		safe["email"] = email.Redact(addr)
	}

	prompt := fmt.Sprintf(`You are a strict data normalization assistant for HR onboarding.
Validate and normalize fields: name, email, role, department, start_date (YYYY-MM-DD).
Return ONLY JSON with exactly these keys:
{
  "corrections": [],
  "warnings": []
}
Each correction is an object like {"field": "role", "from": "ai engineer", "to": "AI Engineer"}.
Input: %s`, mustJSON(safe))

	result, err := c.chatJSON(ctx, prompt)
	if err != nil {
		c.fallback(ctx, "normalize", err)
		return FallbackNormalize()
	}
	return NormalizeResult{
		Corrections: coerceList(result["corrections"]),
		Warnings:    coerceList(result["warnings"]),
	}
}

func (c *Client) ProposeMeeting(ctx context.Context, req MeetingRequest) (MeetingProposal, bool) {
	if !c.Configured() {
		return MeetingProposal{}, false
	}

	prompt := fmt.Sprintf(`You schedule a 1-hour Day-1 orientation for a new hire during 09:00-17:00 %s.
Return ONLY JSON:
{
  "start": {"dateTime": "YYYY-MM-DDTHH:MM:SS", "timeZone": "%s"},
  "end":   {"dateTime": "YYYY-MM-DDTHH:MM:SS", "timeZone": "%s"},
  "location": "",
  "description": ""
}
Inputs: name=%q, email=%q, start_date=%q, role=%q`,
		req.TimeZone, req.TimeZone, req.TimeZone,
		req.Name, email.Redact(req.Email), req.StartDate, req.Role)

	result, err := c.chatJSON(ctx, prompt)
	if err != nil {
		c.fallback(ctx, "propose_meeting", err)
		return MeetingProposal{}, false
	}

	start, startOK := timeField(result["start"])
	end, endOK := timeField(result["end"])
	if !startOK || !endOK {
		c.fallback(ctx, "propose_meeting", fmt.Errorf("malformed proposal"))
		return MeetingProposal{}, false
	}

	return MeetingProposal{
		StartDateTime: start.dateTime,
		StartTimeZone: start.timeZone,
		EndDateTime:   end.dateTime,
		EndTimeZone:   end.timeZone,
		Location:      stringField(result["location"]),
		Description:   stringField(result["description"]),
	}, true
}

func (c *Client) DraftWelcomeMessage(ctx context.Context, name, role, startDate string) string {
	fallback := fmt.Sprintf("Welcome %s! Your role is %s. Your first day is %s. We're excited to have you.",
		name, role, startDate)
	if !c.Configured() {
		return fallback
	}

	prompt := fmt.Sprintf(`Write a concise, professional welcome email (<=120 words).
Return ONLY JSON: {"message": "..."}
Inputs: name=%q, role=%q, start_date=%q`, name, role, startDate)

	result, err := c.chatJSON(ctx, prompt)
	if err != nil {
		c.fallback(ctx, "draft_welcome", err)
		return fallback
	}
	if msg := stringField(result["message"]); msg != "" {
		return msg
	}
	return fallback
}

// chat wire types for the OpenAI-compatible completion endpoint.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatJSON performs one JSON-mode chat call and decodes the reply content as
// a JSON object.
func (c *Client) chatJSON(ctx context.Context, prompt string) (map[string]any, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    c.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	var content map[string]any
	if err := json.Unmarshal([]byte(decoded.Choices[0].Message.Content), &content); err != nil {
		return nil, fmt.Errorf("non-json chat content: %w", err)
	}
	return content, nil
}

func (c *Client) fallback(ctx context.Context, op string, err error) {
	if err != nil {
		c.logger.WarnContext(ctx, "assistant degraded to fallback", "op", op, "error", err.Error())
	}
	c.metrics.ObserveAssistantFallback()
}

type timeWindow struct {
	dateTime string
	timeZone string
}

func timeField(v any) (timeWindow, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return timeWindow{}, false
	}
	dt := stringField(obj["dateTime"])
	if dt == "" {
		return timeWindow{}, false
	}
	return timeWindow{dateTime: dt, timeZone: stringField(obj["timeZone"])}, true
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
