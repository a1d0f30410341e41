package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/i18n"
)

const (
	maxCategoryButtons = 15
	maxProductButtons  = 10
	maxSearchButtons   = 5
	maxButtonLabelLen  = 30
)

const (
	cbShowCategories = "show_categories"
	cbOrderTracking  = "order_tracking"
	cbContactSupport = "contact_support"
	cbMainMenu       = "main_menu"
	cbCategoryPrefix = "category_"
	cbProductPrefix  = "product_"
	cbRatePrefix     = "rate_"
)

func mainMenuKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "categories"), cbShowCategories),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "order_tracking"), cbOrderTracking),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "support"), cbContactSupport),
		),
	)
}

func categoriesKeyboard(categories []catalog.Category, lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range categories {
		if i == maxCategoryButtons {
			break
		}
		label := truncateLabel(fmt.Sprintf("%s (%d)", c.Name, c.Count))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbCategoryPrefix, c.ID)),
		))
	}
	rows = append(rows, backRow(lang, cbMainMenu))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productsKeyboard(products []catalog.Product, lang string, limit int, backTarget string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, p := range products {
		if i == limit {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncateLabel(p.Name), fmt.Sprintf("%s%d", cbProductPrefix, p.ID)),
		))
	}
	rows = append(rows, backRow(lang, backTarget))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for stars := 1; stars <= 5; stars++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d ⭐", stars), fmt.Sprintf("%s%d", cbRatePrefix, stars)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func backRow(lang, target string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "back"), target),
	)
}

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxButtonLabelLen {
		return s
	}
	return string(runes[:maxButtonLabelLen-3]) + "..."
}
