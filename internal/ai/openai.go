package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	historyWindowRemote = 10
	intentMaxTokens     = 200
	intentTemperature   = 0.3
)

// OpenAIBackend generates replies through a remote chat-completion
// endpoint constrained to JSON-object output.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIBackend(apiKey, baseURL, model string, maxTokens int, temperature float32) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (b *OpenAIBackend) GenerateReply(ctx context.Context, message string, history []Turn, lang string) (Reply, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(lang)},
	}
	if len(history) > historyWindowRemote {
		history = history[len(history)-historyWindowRemote:]
	}
	for _, t := range history {
		role := openai.ChatMessageRoleAssistant
		if t.FromUser {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          b.model,
		Messages:       msgs,
		MaxTokens:      b.maxTokens,
		Temperature:    b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, fmt.Errorf("chat completion returned no choices")
	}
	return parseReplyJSON(resp.Choices[0].Message.Content)
}

func (b *OpenAIBackend) AnalyzeIntent(ctx context.Context, message, lang string) (IntentAnalysis, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: intentPrompt(message, lang)},
		},
		MaxTokens:      intentMaxTokens,
		Temperature:    intentTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return IntentAnalysis{}, fmt.Errorf("failed to analyze intent: %w", err)
	}
	if len(resp.Choices) == 0 {
		return IntentAnalysis{}, fmt.Errorf("intent analysis returned no choices")
	}
	return parseIntentJSON(resp.Choices[0].Message.Content)
}

// rawReply mirrors the JSON schema the prompts demand. Confidence defaults
// to 0.5 when the model omits it.
type rawReply struct {
	Response         string   `json:"response"`
	Confidence       *float64 `json:"confidence"`
	ShouldEscalate   bool     `json:"should_escalate"`
	Intent           string   `json:"intent"`
	SuggestedActions []string `json:"suggested_actions"`
}

func parseReplyJSON(content string) (Reply, error) {
	var raw rawReply
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Reply{}, fmt.Errorf("malformed model reply: %w", err)
	}
	confidence := 0.5
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}
	return Reply{
		Response:         raw.Response,
		Confidence:       clamp(confidence),
		ShouldEscalate:   raw.ShouldEscalate,
		Intent:           normalizeIntent(raw.Intent),
		SuggestedActions: raw.SuggestedActions,
	}, nil
}

type rawIntent struct {
	Intent          string            `json:"intent"`
	Confidence      *float64          `json:"confidence"`
	Entities        map[string]string `json:"entities"`
	SuggestedAction string            `json:"suggested_action"`
}

func parseIntentJSON(content string) (IntentAnalysis, error) {
	var raw rawIntent
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return IntentAnalysis{}, fmt.Errorf("malformed intent analysis: %w", err)
	}
	confidence := 0.5
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}
	entities := raw.Entities
	if entities == nil {
		entities = map[string]string{}
	}
	action := raw.SuggestedAction
	if action == "" {
		action = "respond_normally"
	}
	return IntentAnalysis{
		Intent:          normalizeIntent(raw.Intent),
		Confidence:      clamp(confidence),
		Entities:        entities,
		SuggestedAction: action,
	}, nil
}
