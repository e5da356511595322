package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// anthropicVersion pins the messages API revision.
const anthropicVersion = "2023-06-01"

// AnthropicClient calls the Anthropic messages API for one catalog model.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	spec       ModelSpec
	httpClient *http.Client
}

// NewAnthropicClient builds a client bound to the given model spec. baseURL
// should include the version prefix (e.g. "https://api.anthropic.com/v1").
func NewAnthropicClient(apiKey, baseURL string, spec ModelSpec, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		spec:       spec,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Provider implements Client.
func (c *AnthropicClient) Provider() string { return ProviderAnthropic }

// Model implements Client.
func (c *AnthropicClient) Model() string { return c.spec.ID }

// anthropicBlock is one content block of a user message.
type anthropicBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Source *struct {
		Type      string `json:"type"`
		MediaType string `json:"media_type"`
		Data      string `json:"data"`
	} `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke implements Client against POST {base}/messages. Images are
// attached as base64 source blocks ahead of the prompt text.
func (c *AnthropicClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	blocks := make([]anthropicBlock, 0, len(req.Images)+1)
	for _, img := range req.Images {
		b := anthropicBlock{Type: "image"}
		b.Source = &struct {
			Type      string `json:"type"`
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		}{Type: "base64", MediaType: "image/png", Data: img}
		blocks = append(blocks, b)
	}
	blocks = append(blocks, anthropicBlock{Type: "text", Text: req.Prompt})

	body := anthropicRequest{
		Model:       c.spec.ID,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: blocks}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build anthropic request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isDeadline(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anthropic response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", out.Error.Message)
	}
	if len(out.Content) == 0 {
		return nil, errors.New("anthropic returned no content")
	}

	var text bytes.Buffer
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	usage := Usage{
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		TotalTokens:  out.Usage.InputTokens + out.Usage.OutputTokens,
	}
	res := &Response{
		Content:      text.String(),
		Usage:        usage,
		CostUSD:      c.spec.cost(usage),
		Duration:     time.Since(start),
		FinishReason: out.StopReason,
	}
	observeCall(c.Provider(), c.spec.ID, usage, res.CostUSD, res.Duration, true)
	return res, nil
}
