package ai

import (
	"fmt"
	"strings"

	"github.com/amirrezasz77/telewpbot/internal/i18n"
)

const systemPromptFa = `شما یک دستیار هوشمند برای فروشگاه آنلاین هستید که به زبان فارسی پاسخ می‌دهید.

ویژگی‌های شما:
- پاسخ‌های مفید، دقیق و مودبانه ارائه دهید
- در مورد محصولات، قیمت‌ها، و خدمات فروشگاه اطلاعات دهید
- سوالات در مورد سفارشات، ارسال و بازگشت کالا را پاسخ دهید
- اگر نمی‌توانید پاسخ دقیق بدهید، به پشتیبانی انسانی ارجاع دهید

قوانین مهم:
- همیشه به زبان فارسی پاسخ دهید
- مودب و دوستانه باشید
- اگر اطمینان کم دارید، should_escalate را true کنید
- پاسخ‌تان را در قالب JSON ارائه دهید

فرمت پاسخ JSON:
{
    "response": "پاسخ شما به زبان فارسی",
    "confidence": 0.8,
    "should_escalate": false,
    "intent": "product_inquiry",
    "suggested_actions": ["view_products", "contact_support"]
}

انواع intent:
- product_inquiry: سوال در مورد محصولات
- order_tracking: پیگیری سفارش
- support_request: درخواست پشتیبانی
- category_browse: مرور دسته‌بندی‌ها
- general_inquiry: سوال عمومی
- complaint: شکایت
- compliment: تشکر یا تمجید`

const systemPromptEn = `You are an intelligent assistant for an online store that responds in English.

Your capabilities:
- Provide helpful, accurate, and polite responses
- Give information about products, prices, and store services
- Answer questions about orders, shipping, and returns
- Escalate to human support when you cannot provide accurate answers

Important rules:
- Always respond in English
- Be polite and friendly
- If you have low confidence, set should_escalate to true
- Provide your response in JSON format

JSON Response Format:
{
    "response": "Your response in English",
    "confidence": 0.8,
    "should_escalate": false,
    "intent": "product_inquiry",
    "suggested_actions": ["view_products", "contact_support"]
}

Intent types:
- product_inquiry: Questions about products
- order_tracking: Order tracking requests
- support_request: Support requests
- category_browse: Category browsing
- general_inquiry: General questions
- complaint: Customer complaints
- compliment: Thanks or praise`

func systemPrompt(lang string) string {
	if lang == i18n.LangFa {
		return systemPromptFa
	}
	return systemPromptEn
}

func intentPrompt(message, lang string) string {
	if lang == i18n.LangFa {
		return fmt.Sprintf(`پیام کاربر را تجزیه و تحلیل کنید و intent آن را مشخص کنید:

پیام: "%s"

انواع intent:
- product_inquiry: سوال در مورد محصولات
- order_tracking: پیگیری سفارش (شامل شماره سفارش)
- category_browse: مرور دسته‌بندی‌ها
- support_request: درخواست پشتیبانی
- general_inquiry: سوال عمومی
- complaint: شکایت
- compliment: تشکر

پاسخ در قالب JSON:
{
    "intent": "intent_type",
    "confidence": 0.8,
    "entities": {"order_number": "123", "product_name": "تی شرت"},
    "suggested_action": "show_categories"
}`, message)
	}
	return fmt.Sprintf(`Analyze the user message and identify its intent:

Message: "%s"

Intent types:
- product_inquiry: Questions about products
- order_tracking: Order tracking (includes order number)
- category_browse: Category browsing
- support_request: Support requests
- general_inquiry: General questions
- complaint: Customer complaints
- compliment: Thanks or praise

Response in JSON format:
{
    "intent": "intent_type",
    "confidence": 0.8,
    "entities": {"order_number": "123", "product_name": "T-shirt"},
    "suggested_action": "show_categories"
}`, message)
}

// buildLocalPrompt flattens the system prompt, the trailing turns of the
// conversation and the new user message into the plain-text form the local
// generation endpoint expects.
func buildLocalPrompt(message string, history []Turn, lang string, maxTurns int) string {
	userLabel, assistantLabel := "User", "Assistant"
	if lang == i18n.LangFa {
		userLabel, assistantLabel = "کاربر", "دستیار"
	}

	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	var b strings.Builder
	b.WriteString(systemPrompt(lang))
	b.WriteString("\n\n")
	for _, t := range history {
		label := assistantLabel
		if t.FromUser {
			label = userLabel
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Content)
	}
	fmt.Fprintf(&b, "%s: %s\n%s:", userLabel, message, assistantLabel)
	return b.String()
}
