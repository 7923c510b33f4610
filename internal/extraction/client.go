// Package extraction asks a vision-language model to read a scoreboard screenshot.
package extraction

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

	"github.com/mcoot/handicap-tracker/internal/model"
)

// Extractor returns the model's raw answer for a screenshot, to be fed to the reconciler
type Extractor interface {
	Extract(ctx context.Context, req Request) (string, error)
}

// Request describes one screenshot to read
type Request struct {
	ImageURL    string
	RosterNames []string // Passed as hints; matching still happens afterwards
}

// Config holds extraction endpoint settings
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns settings for the OpenAI chat completions API, without a key
func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://api.openai.com/v1/chat/completions",
		Model:       "gpt-4o",
		Timeout:     60 * time.Second,
		MaxTokens:   1500,
		Temperature: 0.1,
	}
}

// Enabled reports whether enough is configured to make requests
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

const systemPrompt = `You read Halo scoreboard screenshots.
Reply with JSON only, no prose, in exactly this shape:
{"gameMode": "Slayer" | "Team Slayer" | other mode name,
 "winningTeam": team number or null,
 "scores": {"<gamertag as shown>": {"kills": n, "deaths": n, "assists": n, "score": n, "team": n or null}}}
Use null for a player whose row you cannot read. Do not invent players.`

// Client calls an OpenAI-compatible chat completions endpoint
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Extractor = (*Client)(nil)

// NewClient creates a new extraction Client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract sends the screenshot to the model and returns its message content.
// Failures wrap model.ErrExtractionFailed; nothing is retried.
func (c *Client) Extract(ctx context.Context, req Request) (string, error) {
	if !c.cfg.Enabled() {
		return "", model.ErrExtractionUnavailable
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return "", fmt.Errorf("%w: image URL is required", model.ErrExtractionFailed)
	}

	userText := "Extract the scoreboard from this screenshot."
	if len(req.RosterNames) > 0 {
		userText += " Known players: " + strings.Join(req.RosterNames, ", ") + "."
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: userText},
				{Type: "image_url", ImageURL: &imageURL{URL: req.ImageURL}},
			}},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrExtractionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", model.ErrExtractionFailed, err)
	}

	c.logger.Info("extraction model responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	var parsed chatResponse
	jsonErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode >= 400 {
		if jsonErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("%w: HTTP %d: %s", model.ErrExtractionFailed, resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("%w: HTTP %d", model.ErrExtractionFailed, resp.StatusCode)
	}
	if jsonErr != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", model.ErrExtractionFailed, jsonErr)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty response", model.ErrExtractionFailed)
	}

	return parsed.Choices[0].Message.Content, nil
}
