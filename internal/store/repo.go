package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) DB() *gorm.DB { return r.db }

// GetOrCreateUser looks the user up by Telegram id, creating the row on
// first contact. Profile fields and the last-interaction timestamp are
// refreshed on every call.
func (r *Repo) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*User, error) {
	now := time.Now()
	var u User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = User{
			TelegramID:      telegramID,
			Username:        username,
			FirstName:       firstName,
			LastName:        lastName,
			LanguageCode:    languageCode,
			LastInteraction: now,
		}
		if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	u.Username = username
	u.FirstName = firstName
	u.LastName = lastName
	if languageCode != "" {
		u.LanguageCode = languageCode
	}
	u.LastInteraction = now
	if err := r.db.WithContext(ctx).Save(&u).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// ActiveConversation returns the user's open conversation, or nil when
// everything is resolved.
func (r *Repo) ActiveConversation(ctx context.Context, userID uint64) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []ConversationStatus{StatusActive, StatusEscalated}).
		Order("started_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active conversation: %w", err)
	}
	return &c, nil
}

// GetOrCreateConversation reuses the open conversation when one exists, so a
// user never has more than one in flight.
func (r *Repo) GetOrCreateConversation(ctx context.Context, userID uint64, subject string) (*Conversation, error) {
	c, err := r.ActiveConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	c = &Conversation{
		UserID:    userID,
		Status:    StatusActive,
		Subject:   subject,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

// SaveUserMessage records an inbound user-authored message. A zero
// telegramMessageID means the platform id is unknown and stays NULL.
func (r *Repo) SaveUserMessage(ctx context.Context, conversationID uint64, content string, telegramMessageID int) error {
	m := Message{
		ConversationID:    conversationID,
		Content:           content,
		FromUser:          true,
		TelegramMessageID: messageID(telegramMessageID),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("save user message: %w", err)
	}
	return nil
}

// SaveAIMessage records a model-generated reply with its confidence score.
func (r *Repo) SaveAIMessage(ctx context.Context, conversationID uint64, content, intent string, confidence float64, telegramMessageID int) error {
	m := Message{
		ConversationID:    conversationID,
		Content:           content,
		AIGenerated:       true,
		AIConfidence:      &confidence,
		Intent:            intent,
		TelegramMessageID: messageID(telegramMessageID),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("save ai message: %w", err)
	}
	return nil
}

func messageID(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

// RecentMessages returns the last limit messages of a conversation in
// chronological order, oldest first.
func (r *Repo) RecentMessages(ctx context.Context, conversationID uint64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	var msgs []Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// EscalateConversation marks an active conversation as escalated and stamps
// the escalation time. Already-escalated conversations are left untouched.
func (r *Repo) EscalateConversation(ctx context.Context, conversationID uint64) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Where("id = ? AND status = ?", conversationID, StatusActive).
		Updates(map[string]any{"status": StatusEscalated, "escalated_at": now}).Error
	if err != nil {
		return fmt.Errorf("escalate conversation: %w", err)
	}
	return nil
}

// ResolveWithRating closes the user's most recent non-resolved conversation
// with a 1..5 satisfaction rating. When every conversation is already
// resolved the call is a no-op.
func (r *Repo) ResolveWithRating(ctx context.Context, userID uint64, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d outside 1..5", rating)
	}
	var c Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, StatusResolved).
		Order("started_at DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load conversation for rating: %w", err)
	}

	now := time.Now()
	c.Status = StatusResolved
	c.EndedAt = &now
	c.SatisfactionRating = &rating
	if err := r.db.WithContext(ctx).Save(&c).Error; err != nil {
		return fmt.Errorf("resolve conversation: %w", err)
	}
	return nil
}

// RecordInteraction appends a generic analytics event. Payload is stored as
// a JSON object; a nil payload becomes "{}".
func (r *Repo) RecordInteraction(ctx context.Context, userID uint64, eventType string, payload map[string]any) error {
	encoded := "{}"
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		encoded = string(b)
	}
	e := InteractionEvent{UserID: userID, Type: eventType, Payload: encoded}
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("record interaction: %w", err)
	}
	return nil
}

func (r *Repo) RecordProductView(ctx context.Context, userID uint64, productID int64, productName string) error {
	v := ProductView{UserID: userID, ProductID: productID, ProductName: productName, ViewedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return fmt.Errorf("record product view: %w", err)
	}
	return nil
}

func (r *Repo) RecordOrderTracking(ctx context.Context, userID uint64, orderNumber string, found bool) error {
	t := OrderTracking{UserID: userID, OrderNumber: orderNumber, Found: found, TrackedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return fmt.Errorf("record order tracking: %w", err)
	}
	return nil
}
