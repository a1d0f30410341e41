package i18n

// Localized message catalog for the bot. Persian is the primary store
// language, English is the fallback for everyone else.

const (
	LangFa = "fa"
	LangEn = "en"
)

var messages = map[string]map[string]string{
	LangFa: {
		"welcome":              "🔸سلام! به ربات فروشگاه خوش آمدید. چطور می‌تونم کمکتون کنم؟",
		"main_menu":            "📋 منوی اصلی",
		"products":             "🛍️ محصولات",
		"categories":           "📂 دسته‌بندی‌ها",
		"order_tracking":       "📦 پیگیری سفارش",
		"support":              "💬 پشتیبانی",
		"back":                 "🔙 بازگشت",
		"error":                "❌ خطایی رخ داده است. لطفاً دوباره تلاش کنید.",
		"order_number_prompt":  "لطفاً شماره سفارش خود را وارد کنید:",
		"escalating_to_human":  "🔄 در حال انتقال به پشتیبان انسانی...",
		"human_support":        "سوال شما به تیم پشتیبانی ارسال شد. به زودی پاسخ دریافت خواهید کرد.",
		"no_products":          "هیچ محصولی در این دسته‌بندی یافت نشد.",
		"order_not_found":      "❌ سفارش با این شماره یافت نشد.",
		"rate_conversation":    "لطفاً کیفیت خدمات ما را از ۱ تا ۵ ستاره امتیاز دهید:",
		"rating_thanks":        "ممنون از امتیاز شما! 🙏",
		"search_results":       "🔍 نتایج جستجو برای '%s':",
		"products_header":      "🛍️ محصولات",
		"fallback_reply":       "متأسفانه در حال حاضر نمی‌توانم پاسخ مناسب ارائه دهم. لطفاً با پشتیبانی تماس بگیرید.",
		"product_format_error": "خطا در نمایش اطلاعات محصول",
		"order_format_error":   "خطا در نمایش اطلاعات سفارش",
		"help": `🤖 راهنمای استفاده از ربات

📋 دستورات اصلی:
/start - شروع مجدد ربات
/menu - نمایش منوی اصلی
/help - نمایش این راهنما
/support - ارتباط با پشتیبانی

🛍️ امکانات:
• مشاهده محصولات و دسته‌بندی‌ها
• پیگیری سفارشات
• چت با هوش مصنوعی
• ارتباط با پشتیبانی انسانی

💬 فقط پیام خود را بنویسید و من پاسخ خواهم داد!`,
	},
	LangEn: {
		"welcome":              "🔸Hello! Welcome to our store bot. How can I help you?",
		"main_menu":            "📋 Main Menu",
		"products":             "🛍️ Products",
		"categories":           "📂 Categories",
		"order_tracking":       "📦 Order Tracking",
		"support":              "💬 Support",
		"back":                 "🔙 Back",
		"error":                "❌ An error occurred. Please try again.",
		"order_number_prompt":  "Please enter your order number:",
		"escalating_to_human":  "🔄 Transferring to human support...",
		"human_support":        "Your question has been sent to our support team. You will receive a response soon.",
		"no_products":          "No products found in this category.",
		"order_not_found":      "❌ Order with this number not found.",
		"rate_conversation":    "Please rate our service from 1 to 5 stars:",
		"rating_thanks":        "Thank you for your rating! 🙏",
		"search_results":       "🔍 Search results for '%s':",
		"products_header":      "🛍️ Products",
		"fallback_reply":       "I apologize, but I cannot provide a suitable response right now. Please contact our support team.",
		"product_format_error": "Error displaying product information",
		"order_format_error":   "Error displaying order information",
		"help": `🤖 Bot Usage Guide

📋 Main Commands:
/start - Restart the bot
/menu - Show main menu
/help - Show this guide
/support - Contact support

🛍️ Features:
• View products and categories
• Track orders
• Chat with AI
• Contact human support

💬 Just type your message and I'll respond!`,
	},
}

// T returns the message for key in the given language, falling back to
// Persian for unknown languages and to the key itself for unknown keys.
func T(lang, key string) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[LangFa]
	}
	if s, ok := table[key]; ok {
		return s
	}
	return key
}

// Normalize maps an arbitrary Telegram language code onto a supported one.
func Normalize(code, fallback string) string {
	switch code {
	case LangFa, LangEn:
		return code
	}
	if _, ok := messages[fallback]; ok {
		return fallback
	}
	return LangFa
}
