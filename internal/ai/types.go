package ai

import "context"

// Intent is the routing label assigned to an inbound message.
type Intent string

const (
	IntentProductInquiry Intent = "product_inquiry"
	IntentOrderTracking  Intent = "order_tracking"
	IntentSupportRequest Intent = "support_request"
	IntentCategoryBrowse Intent = "category_browse"
	IntentGeneralInquiry Intent = "general_inquiry"
	IntentComplaint      Intent = "complaint"
	IntentCompliment     Intent = "compliment"
)

var knownIntents = map[Intent]bool{
	IntentProductInquiry: true,
	IntentOrderTracking:  true,
	IntentSupportRequest: true,
	IntentCategoryBrowse: true,
	IntentGeneralInquiry: true,
	IntentComplaint:      true,
	IntentCompliment:     true,
}

// normalizeIntent maps backend output onto the fixed label set, defaulting
// unknown labels to general_inquiry.
func normalizeIntent(s string) Intent {
	in := Intent(s)
	if knownIntents[in] {
		return in
	}
	return IntentGeneralInquiry
}

// Turn is one prior message of the conversation passed as model context.
type Turn struct {
	Content  string
	FromUser bool
}

// Reply is the structured decision produced for a user message.
type Reply struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence"`
	ShouldEscalate   bool     `json:"should_escalate"`
	Intent           Intent   `json:"intent"`
	SuggestedActions []string `json:"suggested_actions"`
}

// IntentAnalysis is the cheap pre-routing classification result.
type IntentAnalysis struct {
	Intent          Intent            `json:"intent"`
	Confidence      float64           `json:"confidence"`
	Entities        map[string]string `json:"entities"`
	SuggestedAction string            `json:"suggested_action"`
}

// Backend is a single model provider. Both calls may fail; the Service
// converts failures into fallback values.
type Backend interface {
	GenerateReply(ctx context.Context, message string, history []Turn, lang string) (Reply, error)
	AnalyzeIntent(ctx context.Context, message, lang string) (IntentAnalysis, error)
}

// clamp keeps a model-reported confidence inside [0, 1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
