package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	historyWindowLocal = 5
	localParseFallback = 0.7
	generateTimeout    = 30 * time.Second
	healthTimeout      = 5 * time.Second
)

// OllamaBackend talks to a locally hosted model over the /api/generate
// endpoint: prompt string in, raw text out. The reply is opportunistically
// parsed as the structured JSON shape and falls back to a plain-text wrap.
type OllamaBackend struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float32
	httpClient  *http.Client
}

func NewOllamaBackend(baseURL, model string, maxTokens int, temperature float32) *OllamaBackend {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaBackend{
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: generateTimeout},
	}
}

// Healthy reports whether the local endpoint answers its tags listing.
func (b *OllamaBackend) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ollamaGenerateReq struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (b *OllamaBackend) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateReq{
		Model:   b.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: b.temperature, NumPredict: b.maxTokens},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama request failed: %d", resp.StatusCode)
	}

	var decoded ollamaGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama error: %s", decoded.Error)
	}
	return decoded.Response, nil
}

func (b *OllamaBackend) GenerateReply(ctx context.Context, message string, history []Turn, lang string) (Reply, error) {
	text, err := b.generate(ctx, buildLocalPrompt(message, history, lang, historyWindowLocal))
	if err != nil {
		return Reply{}, err
	}
	return wrapLocalReply(text), nil
}

// wrapLocalReply tries the structured JSON shape first; non-JSON output is
// kept as plain text at the default local confidence.
func wrapLocalReply(text string) Reply {
	var raw rawReply
	if err := json.Unmarshal([]byte(text), &raw); err == nil && raw.Response != "" {
		confidence := localParseFallback
		if raw.Confidence != nil {
			confidence = *raw.Confidence
		}
		return Reply{
			Response:         raw.Response,
			Confidence:       clamp(confidence),
			ShouldEscalate:   raw.ShouldEscalate,
			Intent:           normalizeIntent(raw.Intent),
			SuggestedActions: raw.SuggestedActions,
		}
	}
	return Reply{
		Response:   text,
		Confidence: localParseFallback,
		Intent:     IntentGeneralInquiry,
	}
}

func (b *OllamaBackend) AnalyzeIntent(ctx context.Context, message, lang string) (IntentAnalysis, error) {
	text, err := b.generate(ctx, intentPrompt(message, lang))
	if err != nil {
		return IntentAnalysis{}, err
	}
	return parseIntentJSON(text)
}
