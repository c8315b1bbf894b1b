package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"writequest_app/internal/config"
	"writequest_app/internal/model"
)

// PromptClient AI写作灵感接口（OpenAI兼容），仅消费不重定义
type PromptClient struct {
	cfg  config.PromptConfig
	http *http.Client
}

func NewPromptClient(cfg config.PromptConfig) *PromptClient {
	return &PromptClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type promptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type promptRequest struct {
	Model    string          `json:"model"`
	Messages []promptMessage `json:"messages"`
}

type promptResponse struct {
	Choices []struct {
		Message promptMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateWritingPrompt 按体裁和学习阶段生成一条写作开头灵感
func (p *PromptClient) GenerateWritingPrompt(ctx context.Context, genre model.Genre, levelType model.LevelType) (string, error) {
	if p.cfg.BaseURL == "" || p.cfg.APIKey == "" {
		return "", fmt.Errorf("prompt API is not configured")
	}

	system := "You are a friendly writing coach for kids aged 8-13. " +
		"Reply with exactly one imaginative writing prompt of at most two sentences. " +
		"No preamble, no quotes, no numbering."
	user := fmt.Sprintf("Give me a starter prompt for a %s. The writer is practicing %s right now.", genre, levelType)

	body, err := json.Marshal(promptRequest{
		Model: p.cfg.Model,
		Messages: []promptMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("prompt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("prompt API status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out promptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode prompt response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("prompt API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("prompt API returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
