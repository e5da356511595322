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

// OpenAIClient calls the OpenAI chat completions API for one catalog model.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	spec       ModelSpec
	httpClient *http.Client
}

// NewOpenAIClient builds a client bound to the given model spec. baseURL
// should include the version prefix (e.g. "https://api.openai.com/v1").
func NewOpenAIClient(apiKey, baseURL string, spec ModelSpec, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		spec:       spec,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Provider implements Client.
func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

// Model implements Client.
func (c *OpenAIClient) Model() string { return c.spec.ID }

// openaiContentPart is one element of a multimodal user message.
type openaiContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke implements Client against POST {base}/chat/completions. Images are
// attached as base64 data URLs on the user turn.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openaiMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.SystemPrompt})
	}
	if len(req.Images) == 0 {
		messages = append(messages, openaiMessage{Role: "user", Content: req.Prompt})
	} else {
		parts := make([]openaiContentPart, 0, len(req.Images)+1)
		parts = append(parts, openaiContentPart{Type: "text", Text: req.Prompt})
		for _, img := range req.Images {
			p := openaiContentPart{Type: "image_url"}
			p.ImageURL = &struct {
				URL string `json:"url"`
			}{URL: "data:image/png;base64," + img}
			parts = append(parts, p)
		}
		messages = append(messages, openaiMessage{Role: "user", Content: parts})
	}

	body := openaiRequest{
		Model:       c.spec.ID,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isDeadline(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var out openaiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("openai error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	usage := Usage{
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		TotalTokens:  out.Usage.TotalTokens,
	}
	res := &Response{
		Content:      out.Choices[0].Message.Content,
		Usage:        usage,
		CostUSD:      c.spec.cost(usage),
		Duration:     time.Since(start),
		FinishReason: out.Choices[0].FinishReason,
	}
	observeCall(c.Provider(), c.spec.ID, usage, res.CostUSD, res.Duration, true)
	return res, nil
}

// isDeadline reports whether err is a context/client timeout.
func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// truncateBody keeps provider error bodies loggable without flooding.
func truncateBody(b []byte) string {
	const max = 1024
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "…"
}
