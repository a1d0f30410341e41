package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amirrezasz77/telewpbot/internal/ai"
	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/i18n"
	"github.com/amirrezasz77/telewpbot/internal/store"
)

// escalationThreshold is the confidence floor below which a generated reply
// is withheld and the conversation handed to a human.
const escalationThreshold = 0.3

const historyWindow = 10

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	lang := i18n.Normalize(msg.From.LanguageCode, b.defaultLang)

	user, err := b.repo.GetOrCreateUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName, msg.From.LastName, msg.From.LanguageCode)
	if err != nil {
		log.Printf("resolve user %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, i18n.T(lang, "error"))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user, lang)
		return
	}

	conv, err := b.repo.GetOrCreateConversation(ctx, user.ID, subjectFrom(msg.Text))
	if err != nil {
		log.Printf("resolve conversation for user %d: %v", user.ID, err)
		b.sendMessage(msg.Chat.ID, i18n.T(lang, "error"))
		return
	}
	if err := b.repo.SaveUserMessage(ctx, conv.ID, msg.Text, msg.MessageID); err != nil {
		log.Printf("save user message: %v", err)
	}

	// an order-number prompt from a previous turn consumes this message
	if b.sessions.AwaitingOrderNumber(user.TelegramID) {
		b.sessions.SetAwaitingOrderNumber(user.TelegramID, false)
		b.lookupOrder(ctx, user, msg.Chat.ID, lang, strings.TrimSpace(msg.Text))
		return
	}

	if b.handleMenuLabel(ctx, msg.Text, user, conv, msg.Chat.ID, lang) {
		return
	}

	analysis := b.ai.AnalyzeIntent(ctx, msg.Text, lang)
	log.Printf("intent for user %d: %s (%.2f)", user.TelegramID, analysis.Intent, analysis.Confidence)

	switch analysis.Intent {
	case ai.IntentOrderTracking:
		if number := analysis.Entities["order_number"]; number != "" {
			b.lookupOrder(ctx, user, msg.Chat.ID, lang, number)
			return
		}
		b.sessions.SetAwaitingOrderNumber(user.TelegramID, true)
		b.sendMessage(msg.Chat.ID, i18n.T(lang, "order_number_prompt"))
		return
	case ai.IntentCategoryBrowse:
		b.showCategories(ctx, msg.Chat.ID, lang)
		return
	case ai.IntentProductInquiry:
		products := b.catalog.SearchProducts(ctx, msg.Text, maxSearchButtons)
		if len(products) > 0 {
			header := fmt.Sprintf(i18n.T(lang, "search_results"), msg.Text)
			b.sendWithKeyboard(msg.Chat.ID, header, productsKeyboard(products, lang, maxSearchButtons, cbMainMenu))
			return
		}
		// nothing matched, let the model answer instead
	}

	b.generateAndReply(ctx, user, conv, msg.Chat.ID, lang, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *store.User, lang string) {
	switch msg.Command() {
	case "start":
		if err := b.repo.RecordInteraction(ctx, user.ID, "start", nil); err != nil {
			log.Printf("record start: %v", err)
		}
		b.sendWithKeyboard(msg.Chat.ID, i18n.T(lang, "welcome"), mainMenuKeyboard(lang))
	case "menu":
		b.sendWithKeyboard(msg.Chat.ID, i18n.T(lang, "main_menu"), mainMenuKeyboard(lang))
	case "help":
		b.sendMessage(msg.Chat.ID, i18n.T(lang, "help"))
	case "support":
		conv, err := b.repo.GetOrCreateConversation(ctx, user.ID, "support request")
		if err != nil {
			log.Printf("resolve conversation: %v", err)
			b.sendMessage(msg.Chat.ID, i18n.T(lang, "error"))
			return
		}
		b.escalate(ctx, user, conv, msg.Chat.ID, lang)
	default:
		b.sendMessage(msg.Chat.ID, i18n.T(lang, "help"))
	}
}

// handleMenuLabel catches taps forwarded as plain text when the user types
// a menu caption instead of pressing the button.
func (b *Bot) handleMenuLabel(ctx context.Context, text string, user *store.User, conv *store.Conversation, chatID int64, lang string) bool {
	switch text {
	case i18n.T(lang, "categories"):
		b.showCategories(ctx, chatID, lang)
	case i18n.T(lang, "order_tracking"):
		b.sessions.SetAwaitingOrderNumber(user.TelegramID, true)
		b.sendMessage(chatID, i18n.T(lang, "order_number_prompt"))
	case i18n.T(lang, "support"):
		b.escalate(ctx, user, conv, chatID, lang)
	default:
		return false
	}
	return true
}

// generateAndReply runs the full model turn. Low confidence or an explicit
// escalation flag suppresses the model text and hands over to a human.
func (b *Bot) generateAndReply(ctx context.Context, user *store.User, conv *store.Conversation, chatID int64, lang, text string) {
	history, err := b.repo.RecentMessages(ctx, conv.ID, historyWindow)
	if err != nil {
		log.Printf("load history: %v", err)
	}
	turns := make([]ai.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.Turn{Content: m.Content, FromUser: m.FromUser})
	}

	reply := b.ai.GenerateReply(ctx, text, turns, lang)

	if reply.ShouldEscalate || reply.Confidence < escalationThreshold {
		b.escalate(ctx, user, conv, chatID, lang)
		return
	}

	sentID := b.sendMessage(chatID, reply.Response)
	if err := b.repo.SaveAIMessage(ctx, conv.ID, reply.Response, string(reply.Intent), reply.Confidence, sentID); err != nil {
		log.Printf("save bot message: %v", err)
	}
	if err := b.repo.RecordInteraction(ctx, user.ID, "ai_conversation", map[string]any{
		"intent":     string(reply.Intent),
		"confidence": reply.Confidence,
	}); err != nil {
		log.Printf("record ai conversation: %v", err)
	}
}

// escalate hands the conversation to a human: status flip, notice with the
// support contact, then a rating prompt.
func (b *Bot) escalate(ctx context.Context, user *store.User, conv *store.Conversation, chatID int64, lang string) {
	if err := b.repo.EscalateConversation(ctx, conv.ID); err != nil {
		log.Printf("escalate conversation %d: %v", conv.ID, err)
	}
	if err := b.repo.RecordInteraction(ctx, user.ID, "escalation", map[string]any{
		"conversation_id": conv.ID,
	}); err != nil {
		log.Printf("record escalation: %v", err)
	}

	b.sendMessage(chatID, i18n.T(lang, "escalating_to_human"))
	b.sendMessage(chatID, i18n.T(lang, "human_support")+"\n"+b.supportContact)
	b.sendWithKeyboard(chatID, i18n.T(lang, "rate_conversation"), ratingKeyboard())
}

func (b *Bot) lookupOrder(ctx context.Context, user *store.User, chatID int64, lang, number string) {
	order := b.catalog.FindOrderByNumber(ctx, number)
	found := order != nil

	if err := b.repo.RecordOrderTracking(ctx, user.ID, number, found); err != nil {
		log.Printf("record order tracking: %v", err)
	}
	if err := b.repo.RecordInteraction(ctx, user.ID, "order_tracking", map[string]any{
		"order_number": number,
		"found":        found,
	}); err != nil {
		log.Printf("record order interaction: %v", err)
	}

	if !found {
		b.sendMessage(chatID, i18n.T(lang, "order_not_found"))
		return
	}
	b.sendMessage(chatID, catalog.FormatOrder(order, lang))
}

func (b *Bot) showCategories(ctx context.Context, chatID int64, lang string) {
	categories := b.catalog.ListCategories(ctx)
	if len(categories) == 0 {
		b.sendMessage(chatID, i18n.T(lang, "error"))
		return
	}
	b.sendWithKeyboard(chatID, i18n.T(lang, "categories"), categoriesKeyboard(categories, lang))
}

// subjectFrom derives the conversation subject from its opening message.
func subjectFrom(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > 60 {
		return string(runes[:60])
	}
	return string(runes)
}
