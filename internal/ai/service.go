package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/amirrezasz77/telewpbot/internal/config"
	"github.com/amirrezasz77/telewpbot/internal/i18n"
)

// Service wraps a model backend and guarantees the routing layer always
// gets a usable value: confidence clamped, failures converted to the fixed
// localized fallback.
type Service struct {
	backend Backend
}

func NewServiceWithBackend(b Backend) *Service {
	return &Service{backend: b}
}

// NewService selects the backend at startup. A configured local backend is
// health-checked and silently replaced by the remote one when unreachable;
// with neither usable, startup fails.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg.UseLocalAI {
		local := NewOllamaBackend(cfg.OllamaURL, cfg.LocalAIModel, cfg.AIMaxTokens, cfg.AITemperature)
		if local.Healthy(ctx) {
			log.Printf("ai service initialized with local model %s at %s", cfg.LocalAIModel, cfg.OllamaURL)
			return &Service{backend: local}, nil
		}
		log.Printf("local model at %s not available, falling back to remote backend", cfg.OllamaURL)
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("neither local model nor remote api key is configured")
	}
	log.Printf("ai service initialized with remote model %s", cfg.OpenAIModel)
	return &Service{
		backend: NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AIMaxTokens, cfg.AITemperature),
	}, nil
}

// FallbackReply is the reply used whenever the backend fails: zero
// confidence and a forced escalation, so the user is never left without an
// answer.
func FallbackReply(lang string) Reply {
	return Reply{
		Response:         i18n.T(lang, "fallback_reply"),
		Confidence:       0,
		ShouldEscalate:   true,
		Intent:           IntentSupportRequest,
		SuggestedActions: []string{"contact_support"},
	}
}

// GenerateReply never fails: backend errors degrade to the localized
// fallback reply.
func (s *Service) GenerateReply(ctx context.Context, message string, history []Turn, lang string) Reply {
	reply, err := s.backend.GenerateReply(ctx, message, history, lang)
	if err != nil {
		log.Printf("ai generate error: %v", err)
		return FallbackReply(lang)
	}
	reply.Confidence = clamp(reply.Confidence)
	return reply
}

// AnalyzeIntent never fails: errors degrade to a neutral general_inquiry
// classification.
func (s *Service) AnalyzeIntent(ctx context.Context, message, lang string) IntentAnalysis {
	analysis, err := s.backend.AnalyzeIntent(ctx, message, lang)
	if err != nil {
		log.Printf("intent analysis error: %v", err)
		return IntentAnalysis{
			Intent:          IntentGeneralInquiry,
			Confidence:      0.5,
			Entities:        map[string]string{},
			SuggestedAction: "respond_normally",
		}
	}
	analysis.Confidence = clamp(analysis.Confidence)
	return analysis
}
