package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"citytwin/internal/config"
)

// ErrNoAPIKey reports that the chat endpoint is not configured at all.
var ErrNoAPIKey = errors.New("xAI API key not configured")

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient proxies chat-completion requests to the xAI API.
type ChatClient struct {
	cfg config.AIConfig
	hc  *http.Client
	log zerolog.Logger
}

// NewChatClient builds an xAI chat client.
func NewChatClient(cfg config.AIConfig, log zerolog.Logger) *ChatClient {
	return &ChatClient{cfg: cfg, hc: &http.Client{Timeout: cfg.Timeout}, log: log}
}

// Model reports the configured model name.
func (c *ChatClient) Model() string { return c.cfg.Model }

// Chat sends system prompt, optional JSON context, trimmed history and the
// user prompt to the chat endpoint and returns the assistant's answer. Only
// the last eight history messages are forwarded.
func (c *ChatClient) Chat(ctx context.Context, systemPrompt string, contextData map[string]any, history []ChatMessage, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	messages := []ChatMessage{{Role: "system", Content: systemPrompt}}
	if len(contextData) > 0 {
		raw, err := json.Marshal(contextData)
		if err == nil {
			messages = append(messages, ChatMessage{
				Role:    "system",
				Content: "Контекст симуляции (JSON): " + string(raw),
			})
		}
	}
	if len(history) > 8 {
		history = history[len(history)-8:]
	}
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages":    messages,
	})
	if err != nil {
		return "", err
	}

	resp, err := doWithRetry(ctx, c.hc, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	answer := parsed.content()
	if answer == "" {
		return "", errors.New("no content in chat response")
	}
	return answer, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// content handles both plain-string and multi-part content payloads.
func (r chatResponse) content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	raw := r.Choices[0].Message.Content

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var texts []string
		for _, p := range parts {
			if p.Type == "text" && p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		return strings.TrimSpace(strings.Join(texts, "\n"))
	}
	return ""
}

// LocalChatFallback produces a canned recommendation keyed off the prompt so
// the assistant endpoint stays useful without an API key.
func LocalChatFallback(prompt string) string {
	text := strings.ToLower(prompt)

	switch {
	case strings.Contains(text, "мост") || strings.Contains(text, "bridge"):
		return "При перекрытии моста нагрузка на объездные маршруты вырастет. " +
			"Рекомендация: реверсивное движение и ограничение грузового потока в час пик."
	case strings.Contains(text, "трафик") || strings.Contains(text, "traffic") || strings.Contains(text, "пробк"):
		return "Ожидается рост трафика на ключевых узлах в пиковые часы. " +
			"Рекомендация: перенастроить светофоры и временно повысить приоритет общественного транспорта."
	case strings.Contains(text, "эколог") || strings.Contains(text, "air") || strings.Contains(text, "выброс"):
		return "Экологическая нагрузка может вырасти без дополнительных мер. " +
			"Рекомендация: ограничить транзит через перегруженные районы и усилить контроль на промзонах."
	default:
		return "Могу оценить влияние на трафик, экологию и логистику. " +
			"Уточни сценарий: какой объект меняется и на какой срок."
	}
}
