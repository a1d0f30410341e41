package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/amirrezasz77/telewpbot/internal/ai"
	"github.com/amirrezasz77/telewpbot/internal/catalog"
	"github.com/amirrezasz77/telewpbot/internal/i18n"
	"github.com/amirrezasz77/telewpbot/internal/session"
	"github.com/amirrezasz77/telewpbot/internal/store"
)

type fakeSender struct {
	sent     []string
	answered []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, mc.Text)
	}
	return tgbotapi.Message{MessageID: 9000 + len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cc, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answered = append(f.answered, cc.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeModel struct {
	reply    ai.Reply
	analysis ai.IntentAnalysis
}

func (f *fakeModel) GenerateReply(ctx context.Context, message string, history []ai.Turn, lang string) (ai.Reply, error) {
	return f.reply, nil
}

func (f *fakeModel) AnalyzeIntent(ctx context.Context, message, lang string) (ai.IntentAnalysis, error) {
	return f.analysis, nil
}

var testDBCounter int

func newTestBot(t *testing.T, model *fakeModel, catalogHandler http.Handler) (*Bot, *fakeSender, *store.Repo) {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&store.User{}, &store.Conversation{}, &store.Message{}, &store.InteractionEvent{}, &store.ProductView{}, &store.OrderTracking{}, &store.DailyRollup{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := store.NewRepo(db)

	if catalogHandler == nil {
		catalogHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]any{})
		})
	}
	srv := httptest.NewServer(catalogHandler)
	t.Cleanup(srv.Close)
	cat, err := catalog.NewClient(srv.URL, "ck_test", "cs_test")
	if err != nil {
		t.Fatalf("catalog client: %v", err)
	}

	fs := &fakeSender{}
	b := &Bot{
		s:              fs,
		repo:           repo,
		catalog:        cat,
		ai:             ai.NewServiceWithBackend(model),
		sessions:       session.NewStore(),
		defaultLang:    i18n.LangEn,
		supportContact: "@storesupport",
	}
	return b, fs, repo
}

func userMessage(id int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 501,
		From:      &tgbotapi.User{ID: id, UserName: "tester", FirstName: "T", LanguageCode: "en"},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
	}
}

func callback(id int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: id, UserName: "tester", LanguageCode: "en"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		Data:    data,
	}
}

func TestHandleMessage_NewUserGetsReplyAndRows(t *testing.T) {
	model := &fakeModel{
		reply:    ai.Reply{Response: "Happy to help!", Confidence: 0.9, Intent: ai.IntentGeneralInquiry},
		analysis: ai.IntentAnalysis{Intent: ai.IntentGeneralInquiry, Confidence: 0.8, Entities: map[string]string{}},
	}
	b, fs, repo := newTestBot(t, model, nil)
	ctx := context.Background()

	b.handleMessage(ctx, userMessage(42, "hello"))

	if len(fs.sent) != 1 || fs.sent[0] != "Happy to help!" {
		t.Fatalf("sent = %+v", fs.sent)
	}

	u, err := repo.GetOrCreateUser(ctx, 42, "tester", "T", "", "en")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	conv, err := repo.ActiveConversation(ctx, u.ID)
	if err != nil || conv == nil {
		t.Fatalf("active conversation: %v %v", conv, err)
	}
	msgs, _ := repo.RecentMessages(ctx, conv.ID, 10)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want user + bot", len(msgs))
	}
	if !msgs[0].FromUser || msgs[0].AIGenerated {
		t.Errorf("user message flags wrong: %+v", msgs[0])
	}
	if msgs[0].TelegramMessageID == nil || *msgs[0].TelegramMessageID != 501 {
		t.Errorf("user telegram id = %v", msgs[0].TelegramMessageID)
	}
	if msgs[1].FromUser || !msgs[1].AIGenerated {
		t.Errorf("bot message flags wrong: %+v", msgs[1])
	}
	if msgs[1].AIConfidence == nil || *msgs[1].AIConfidence != 0.9 {
		t.Errorf("bot message confidence = %v", msgs[1].AIConfidence)
	}
	if msgs[1].TelegramMessageID == nil || *msgs[1].TelegramMessageID != 9001 {
		t.Errorf("bot telegram id = %v", msgs[1].TelegramMessageID)
	}
}

func TestHandleMessage_LowConfidenceEscalates(t *testing.T) {
	model := &fakeModel{
		reply:    ai.Reply{Response: "uncertain answer", Confidence: 0.2, Intent: ai.IntentGeneralInquiry},
		analysis: ai.IntentAnalysis{Intent: ai.IntentGeneralInquiry, Confidence: 0.8, Entities: map[string]string{}},
	}
	b, fs, repo := newTestBot(t, model, nil)
	ctx := context.Background()

	b.handleMessage(ctx, userMessage(7, "something confusing"))

	for _, text := range fs.sent {
		if text == "uncertain answer" {
			t.Fatal("model reply must be withheld on escalation")
		}
	}
	joined := strings.Join(fs.sent, "\n")
	if !strings.Contains(joined, i18n.T("en", "escalating_to_human")) {
		t.Errorf("no escalation notice in %q", joined)
	}
	if !strings.Contains(joined, "@storesupport") {
		t.Errorf("no support contact in %q", joined)
	}
	if !strings.Contains(joined, i18n.T("en", "rate_conversation")) {
		t.Errorf("no rating prompt in %q", joined)
	}

	u, _ := repo.GetOrCreateUser(ctx, 7, "tester", "T", "", "en")
	conv, _ := repo.ActiveConversation(ctx, u.ID)
	if conv == nil || conv.Status != store.StatusEscalated {
		t.Fatalf("conversation = %+v, want escalated", conv)
	}
	if conv.EscalatedAt == nil {
		t.Error("escalation time not stamped")
	}

	var events []store.InteractionEvent
	repo.DB().Where("type = ?", "escalation").Find(&events)
	if len(events) != 1 {
		t.Errorf("escalation events = %d, want 1", len(events))
	}
}

func TestHandleMessage_OrderTrackingWithEntity(t *testing.T) {
	model := &fakeModel{
		analysis: ai.IntentAnalysis{
			Intent:     ai.IntentOrderTracking,
			Confidence: 0.9,
			Entities:   map[string]string{"order_number": "1042"},
		},
	}
	var gotSearch string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSearch = r.URL.Query().Get("search")
		json.NewEncoder(w).Encode([]map[string]any{{
			"id":           9,
			"number":       "1042",
			"status":       "processing",
			"total":        "250000",
			"currency":     "IRT",
			"date_created": "2026-08-20T10:00:00",
		}})
	})
	b, fs, repo := newTestBot(t, model, handler)
	ctx := context.Background()

	b.handleMessage(ctx, userMessage(11, "where is my order 1042?"))

	if gotSearch != "1042" {
		t.Errorf("catalog searched for %q, want 1042", gotSearch)
	}
	if len(fs.sent) != 1 {
		t.Fatalf("sent = %+v", fs.sent)
	}
	if !strings.Contains(fs.sent[0], "1042") {
		t.Errorf("reply lacks order number: %q", fs.sent[0])
	}
	if !strings.Contains(fs.sent[0], catalog.OrderStatusText("processing", "en")) {
		t.Errorf("reply lacks mapped status: %q", fs.sent[0])
	}

	u, _ := repo.GetOrCreateUser(ctx, 11, "tester", "T", "", "en")
	var rows []store.OrderTracking
	repo.DB().Where("user_id = ?", u.ID).Find(&rows)
	if len(rows) != 1 || !rows[0].Found || rows[0].OrderNumber != "1042" {
		t.Errorf("order tracking rows = %+v", rows)
	}
}

func TestHandleMessage_OrderNotFound(t *testing.T) {
	model := &fakeModel{
		analysis: ai.IntentAnalysis{
			Intent:     ai.IntentOrderTracking,
			Confidence: 0.9,
			Entities:   map[string]string{"order_number": "9999"},
		},
	}
	b, fs, repo := newTestBot(t, model, nil)
	ctx := context.Background()

	b.handleMessage(ctx, userMessage(12, "order 9999?"))

	if len(fs.sent) != 1 || fs.sent[0] != i18n.T("en", "order_not_found") {
		t.Fatalf("sent = %+v", fs.sent)
	}
	var rows []store.OrderTracking
	repo.DB().Find(&rows)
	if len(rows) != 1 || rows[0].Found {
		t.Errorf("lookup must be recorded as not found: %+v", rows)
	}
}

func TestHandleMessage_AwaitingOrderNumberFlow(t *testing.T) {
	model := &fakeModel{
		analysis: ai.IntentAnalysis{
			Intent:     ai.IntentOrderTracking,
			Confidence: 0.9,
			Entities:   map[string]string{},
		},
	}
	b, fs, _ := newTestBot(t, model, nil)
	ctx := context.Background()

	b.handleMessage(ctx, userMessage(13, "I want to track my order"))
	if len(fs.sent) != 1 || fs.sent[0] != i18n.T("en", "order_number_prompt") {
		t.Fatalf("first turn sent = %+v", fs.sent)
	}
	if !b.sessions.AwaitingOrderNumber(13) {
		t.Fatal("awaiting flag not set")
	}

	// next message is consumed as the number, no classification happens
	b.handleMessage(ctx, userMessage(13, "555"))
	if b.sessions.AwaitingOrderNumber(13) {
		t.Error("awaiting flag not cleared")
	}
	if fs.sent[len(fs.sent)-1] != i18n.T("en", "order_not_found") {
		t.Errorf("second turn sent = %+v", fs.sent)
	}
}

func TestStartCommand_SendsWelcomeAndRecordsEvent(t *testing.T) {
	b, fs, repo := newTestBot(t, &fakeModel{}, nil)
	ctx := context.Background()

	msg := userMessage(21, "/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	b.handleMessage(ctx, msg)

	if len(fs.sent) != 1 || fs.sent[0] != i18n.T("en", "welcome") {
		t.Fatalf("sent = %+v", fs.sent)
	}
	var events []store.InteractionEvent
	repo.DB().Where("type = ?", "start").Find(&events)
	if len(events) != 1 {
		t.Errorf("start events = %d", len(events))
	}
}

func TestRatingCallback_ResolvesConversation(t *testing.T) {
	b, fs, repo := newTestBot(t, &fakeModel{}, nil)
	ctx := context.Background()

	u, _ := repo.GetOrCreateUser(ctx, 31, "tester", "T", "", "en")
	conv, _ := repo.GetOrCreateConversation(ctx, u.ID, "")
	repo.EscalateConversation(ctx, conv.ID)

	b.handleCallback(ctx, callback(31, "rate_5"))

	var loaded store.Conversation
	if err := repo.DB().First(&loaded, conv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Status != store.StatusResolved {
		t.Errorf("status = %q", loaded.Status)
	}
	if loaded.SatisfactionRating == nil || *loaded.SatisfactionRating != 5 {
		t.Errorf("rating = %v", loaded.SatisfactionRating)
	}
	if fs.sent[len(fs.sent)-1] != i18n.T("en", "rating_thanks") {
		t.Errorf("sent = %+v", fs.sent)
	}

	// rating again with everything resolved stays a polite no-op
	b.handleCallback(ctx, callback(31, "rate_1"))
	repo.DB().First(&loaded, conv.ID)
	if *loaded.SatisfactionRating != 5 {
		t.Errorf("resolved rating overwritten: %d", *loaded.SatisfactionRating)
	}
}

func TestCallback_AnsweredThroughRequest(t *testing.T) {
	b, fs, repo := newTestBot(t, &fakeModel{}, nil)
	ctx := context.Background()

	u, _ := repo.GetOrCreateUser(ctx, 51, "tester", "T", "", "en")
	conv, _ := repo.GetOrCreateConversation(ctx, u.ID, "")
	repo.EscalateConversation(ctx, conv.ID)

	b.handleCallback(ctx, callback(51, "rate_3"))

	if len(fs.answered) != 1 || fs.answered[0] != "cb1" {
		t.Fatalf("callback query not acknowledged: %+v", fs.answered)
	}
}

func TestCallback_WithoutMessageIsIgnored(t *testing.T) {
	b, fs, _ := newTestBot(t, &fakeModel{}, nil)

	cb := callback(52, "rate_4")
	cb.Message = nil
	b.handleCallback(context.Background(), cb)

	if len(fs.sent) != 0 {
		t.Errorf("nothing should be sent for a message-less callback: %+v", fs.sent)
	}
	if len(fs.answered) != 1 {
		t.Errorf("spinner must still be stopped: %+v", fs.answered)
	}
}

func TestProductCallback_RecordsView(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/products/55") {
			json.NewEncoder(w).Encode(map[string]any{
				"id": 55, "name": "Gaming Laptop", "price": "45000000", "stock_status": "instock",
			})
			return
		}
		http.NotFound(w, r)
	})
	b, fs, repo := newTestBot(t, &fakeModel{}, handler)
	ctx := context.Background()

	b.handleCallback(ctx, callback(41, "product_55"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "Gaming Laptop") {
		t.Fatalf("sent = %+v", fs.sent)
	}
	var views []store.ProductView
	repo.DB().Find(&views)
	if len(views) != 1 || views[0].ProductID != 55 || views[0].ProductName != "Gaming Laptop" {
		t.Errorf("views = %+v", views)
	}
}
