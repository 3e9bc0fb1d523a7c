package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const defaultRequestTimeout = 90 * time.Second

// Endpoint identifies one chat-completions provider. Any service exposing the
// OpenAI-compatible API works, including self-hosted gateways.
type Endpoint struct {
	BaseURL string
	APIKey  string
	Model   string
}

func (e Endpoint) configured() bool {
	return strings.TrimSpace(e.BaseURL) != "" && strings.TrimSpace(e.Model) != ""
}

// Client produces bilingual token reports through a primary endpoint with an
// optional fallback tried once when the primary fails.
type Client struct {
	primary  Endpoint
	fallback Endpoint
	http     *http.Client
	logger   *zap.Logger
}

var _ ports.Summarizer = (*Client)(nil)

func NewClient(primary, fallback Endpoint, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{primary: primary, fallback: fallback, http: httpClient, logger: logger}
}

func (c *Client) Summarize(ctx context.Context, bundle domain.AnalysisBundle) (domain.AnalysisReport, error) {
	prompt := buildPrompt(bundle)

	endpoints := make([]Endpoint, 0, 2)
	if c.primary.configured() {
		endpoints = append(endpoints, c.primary)
	}
	if c.fallback.configured() {
		endpoints = append(endpoints, c.fallback)
	}
	if len(endpoints) == 0 {
		return domain.AnalysisReport{}, fmt.Errorf("%w: no analysis endpoint configured", domain.ErrAnalysisFailed)
	}

	var lastErr error
	for _, endpoint := range endpoints {
		report, err := c.complete(ctx, endpoint, prompt)
		if err == nil {
			return report, nil
		}
		if ctx.Err() != nil {
			return domain.AnalysisReport{}, fmt.Errorf("summarize via %s: %w", endpoint.Model, ctx.Err())
		}

		c.logger.Warn("analysis endpoint failed",
			zap.String("model", endpoint.Model),
			zap.Error(err))
		lastErr = err
	}

	return domain.AnalysisReport{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, lastErr)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, endpoint Endpoint, prompt string) (domain.AnalysisReport, error) {
	payload, err := json.Marshal(chatRequest{
		Model: endpoint.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(endpoint.BaseURL, "/") + "/chat/completions"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if endpoint.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return domain.AnalysisReport{}, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("decode payload: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return domain.AnalysisReport{}, fmt.Errorf("payload contains no choices")
	}

	return parseReport(parsed.Choices[0].Message.Content, endpoint.Model), nil
}

// parseReport expects a JSON object with summary and summary_zh fields. Models
// occasionally wrap the object in a code fence or return prose; both fall back
// to using the raw content as the English summary.
func parseReport(content, model string) domain.AnalysisReport {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var structured struct {
		Summary   string `json:"summary"`
		SummaryZH string `json:"summary_zh"`
	}
	if err := json.Unmarshal([]byte(trimmed), &structured); err == nil && structured.Summary != "" {
		return domain.AnalysisReport{
			Summary:   structured.Summary,
			SummaryZH: structured.SummaryZH,
			Model:     model,
		}
	}

	return domain.AnalysisReport{Summary: strings.TrimSpace(content), Model: model}
}
