package telegram

import (
	"context"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/i18n"
	"github.com/amirrezasz77/telewpbot/internal/store"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	lang := i18n.Normalize(cb.From.LanguageCode, b.defaultLang)

	// stop the client-side spinner; failures here are harmless
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("answer callback: %v", err)
	}

	// callbacks older than 48h or from inline-mode messages carry no message
	if cb.Message == nil {
		log.Printf("callback %q from user %d without a message, ignoring", cb.Data, cb.From.ID)
		return
	}

	user, err := b.repo.GetOrCreateUser(ctx, cb.From.ID, cb.From.UserName, cb.From.FirstName, cb.From.LastName, cb.From.LanguageCode)
	if err != nil {
		log.Printf("resolve user %d: %v", cb.From.ID, err)
		return
	}
	chatID := cb.Message.Chat.ID

	data := cb.Data
	switch {
	case data == cbShowCategories:
		b.showCategories(ctx, chatID, lang)
	case data == cbOrderTracking:
		b.sessions.SetAwaitingOrderNumber(user.TelegramID, true)
		b.sendMessage(chatID, i18n.T(lang, "order_number_prompt"))
	case data == cbContactSupport:
		conv, err := b.repo.GetOrCreateConversation(ctx, user.ID, "support request")
		if err != nil {
			log.Printf("resolve conversation: %v", err)
			b.sendMessage(chatID, i18n.T(lang, "error"))
			return
		}
		b.escalate(ctx, user, conv, chatID, lang)
	case data == cbMainMenu:
		b.sendWithKeyboard(chatID, i18n.T(lang, "main_menu"), mainMenuKeyboard(lang))
	case strings.HasPrefix(data, cbCategoryPrefix):
		b.showCategoryProducts(ctx, user, chatID, lang, strings.TrimPrefix(data, cbCategoryPrefix))
	case strings.HasPrefix(data, cbProductPrefix):
		b.showProduct(ctx, user, chatID, lang, strings.TrimPrefix(data, cbProductPrefix))
	case strings.HasPrefix(data, cbRatePrefix):
		b.submitRating(ctx, user, chatID, lang, strings.TrimPrefix(data, cbRatePrefix))
	default:
		log.Printf("unknown callback %q from user %d", data, user.TelegramID)
	}
}

func (b *Bot) showCategoryProducts(ctx context.Context, user *store.User, chatID int64, lang, rawID string) {
	categoryID, err := strconv.Atoi(rawID)
	if err != nil {
		log.Printf("bad category id %q: %v", rawID, err)
		return
	}

	if err := b.repo.RecordInteraction(ctx, user.ID, "category_browse", map[string]any{
		"category_id": categoryID,
	}); err != nil {
		log.Printf("record category browse: %v", err)
	}

	products := b.catalog.ListProducts(ctx, categoryID, 1, maxProductButtons)
	if len(products) == 0 {
		b.sendMessage(chatID, i18n.T(lang, "no_products"))
		return
	}
	b.sendWithKeyboard(chatID, i18n.T(lang, "products_header"), productsKeyboard(products, lang, maxProductButtons, cbShowCategories))
}

func (b *Bot) showProduct(ctx context.Context, user *store.User, chatID int64, lang, rawID string) {
	productID, err := strconv.Atoi(rawID)
	if err != nil {
		log.Printf("bad product id %q: %v", rawID, err)
		return
	}

	product := b.catalog.GetProduct(ctx, productID)
	if product != nil {
		if err := b.repo.RecordProductView(ctx, user.ID, int64(productID), product.Name); err != nil {
			log.Printf("record product view: %v", err)
		}
		if err := b.repo.RecordInteraction(ctx, user.ID, "product_view", map[string]any{
			"product_id": productID,
		}); err != nil {
			log.Printf("record product interaction: %v", err)
		}
	}
	b.sendMessage(chatID, catalog.FormatProduct(product, lang))
}

func (b *Bot) submitRating(ctx context.Context, user *store.User, chatID int64, lang, rawStars string) {
	stars, err := strconv.Atoi(rawStars)
	if err != nil || stars < 1 || stars > 5 {
		log.Printf("bad rating %q from user %d", rawStars, user.TelegramID)
		return
	}

	if err := b.repo.ResolveWithRating(ctx, user.ID, stars); err != nil {
		log.Printf("resolve with rating: %v", err)
		b.sendMessage(chatID, i18n.T(lang, "error"))
		return
	}
	if err := b.repo.RecordInteraction(ctx, user.ID, "rating", map[string]any{
		"stars": stars,
	}); err != nil {
		log.Printf("record rating: %v", err)
	}
	b.sendMessage(chatID, i18n.T(lang, "rating_thanks"))
}
