package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docinsight-be/pkg/llm"
)

type OpenAIProvider struct {
	ApiKey    string
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, modelName string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		ApiKey:    apiKey,
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIStreamResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *OpenAIProvider) buildRequest(history []llm.Message, options *llm.Options, stream bool) openAIChatRequest {
	messages := make([]openAIMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages[i] = openAIMessage{Role: role, Content: msg.Content}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	return openAIChatRequest{
		Model:       model,
		Messages:    messages,
		Stream:      stream,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
}

func (o *OpenAIProvider) post(ctx context.Context, payload openAIChatRequest) (*http.Response, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.ApiKey)

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	return resp, nil
}

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.BuildOptions(opts...)

	resp, err := o.post(ctx, o.buildRequest(history, options, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// ChatStream consumes the SSE stream of the chat completions API, forwarding
// content deltas until the [DONE] sentinel.
func (o *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := llm.BuildOptions(opts...)

	resp, err := o.post(ctx, o.buildRequest(history, options, true))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				out <- llm.StreamChunk{Err: ctx.Err()}
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				out <- llm.StreamChunk{Done: true}
				return
			}

			var event openAIStreamResponse
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				out <- llm.StreamChunk{Err: fmt.Errorf("decode stream event: %w", err)}
				return
			}
			if len(event.Choices) > 0 && event.Choices[0].Delta.Content != "" {
				out <- llm.StreamChunk{Delta: event.Choices[0].Delta.Content}
			}
		}

		if err := scanner.Err(); err != nil {
			out <- llm.StreamChunk{Err: fmt.Errorf("stream interrupted: %w", err)}
			return
		}
		out <- llm.StreamChunk{Err: fmt.Errorf("stream ended without completion marker")}
	}()

	return out, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
