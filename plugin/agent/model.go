package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ErrRateLimited marks a model-provider rate-limit rejection. The chat layer
// maps it to a friendlier retry message than other model failures.
var ErrRateLimited = errors.New("model provider rate limited")

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Completion is one model response: final text, tool calls, or both.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatRequest carries the message history and tool schema for one model call.
type ChatRequest struct {
	Messages []map[string]any
	Tools    []map[string]any
}

// LanguageModel is the replaceable model capability behind the runner.
type LanguageModel interface {
	Complete(ctx context.Context, req *ChatRequest) (*Completion, error)
}

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterModel calls the OpenRouter chat-completions API using the
// OpenAI-compatible `tools` contract, which works on any function-capable
// model.
type OpenRouterModel struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenRouterModel creates a client for the given model name.
func NewOpenRouterModel(apiKey, model string) *OpenRouterModel {
	return &OpenRouterModel{
		apiKey:   apiKey,
		model:    model,
		endpoint: openRouterEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Complete performs one chat-completions round trip.
func (m *OpenRouterModel) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	body := map[string]any{
		"model":    m.model,
		"messages": req.Messages,
	}
	if len(req.Tools) > 0 {
		body["tools"] = req.Tools
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "model request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Wrap(ErrRateLimited, "openrouter")
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("openrouter status %d: %s", resp.StatusCode, snippet)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					ID       string `json:"id"`
					Type     string `json:"type"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, errors.Wrap(err, "decode model response")
	}
	if len(apiResp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	msg := apiResp.Choices[0].Message
	completion := &Completion{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return completion, nil
}
