package telegram

import (
	"context"
	"log"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/amirrezasz77/telewpbot/internal/ai"
	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/session"
	"github.com/amirrezasz77/telewpbot/internal/store"
)

type Bot struct {
	api            *tgbotapi.BotAPI
	s              sender
	repo           *store.Repo
	catalog        *catalog.Client
	ai             *ai.Service
	sessions       *session.Store
	defaultLang    string
	supportContact string

	processed atomic.Int64
}

func New(botToken string, repo *store.Repo, cat *catalog.Client, aiSvc *ai.Service, defaultLang, supportContact string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("Authorized on account %s", api.Self.UserName)
	return &Bot{
		api:            api,
		s:              botAPISender{api: api},
		repo:           repo,
		catalog:        cat,
		ai:             aiSvc,
		sessions:       session.NewStore(),
		defaultLang:    defaultLang,
		supportContact: supportContact,
	}, nil
}

// MessagesProcessed reports how many updates the bot handled since start.
func (b *Bot) MessagesProcessed() int64 {
	return b.processed.Load()
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.processed.Add(1)
				b.handleMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.processed.Add(1)
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

// sendMessage returns the platform id of the delivered message, 0 when the
// send failed.
func (b *Bot) sendMessage(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.s.Send(msg)
	if err != nil {
		log.Printf("failed to send message: %v", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
