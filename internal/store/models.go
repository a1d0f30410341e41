package store

import "time"

// ConversationStatus is the lifecycle of a support conversation. Transitions
// only move forward: active -> escalated -> resolved, or active -> resolved.
type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusEscalated ConversationStatus = "escalated"
	StatusResolved  ConversationStatus = "resolved"
)

type User struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	TelegramID      int64     `gorm:"uniqueIndex;not null"`
	Username        string    `gorm:"type:varchar(64)"`
	FirstName       string    `gorm:"type:varchar(128)"`
	LastName        string    `gorm:"type:varchar(128)"`
	LanguageCode    string    `gorm:"type:varchar(8)"`
	CreatedAt       time.Time
	LastInteraction time.Time `gorm:"index"`
}

func (User) TableName() string { return "users" }

type Conversation struct {
	ID                 uint64             `gorm:"primaryKey;autoIncrement"`
	UserID             uint64             `gorm:"index;not null"`
	Status             ConversationStatus `gorm:"type:varchar(16);index;not null;default:active"`
	Subject            string             `gorm:"type:varchar(255)"`
	StartedAt          time.Time          `gorm:"index"`
	EndedAt            *time.Time
	EscalatedAt        *time.Time
	SatisfactionRating *int
}

func (Conversation) TableName() string { return "conversations" }

// Message is one turn of a conversation. AIConfidence and
// TelegramMessageID stay NULL unless known, so a user message is never
// mistaken for a zero-confidence generated reply.
type Message struct {
	ID                uint64 `gorm:"primaryKey;autoIncrement"`
	ConversationID    uint64 `gorm:"index;not null"`
	Content           string `gorm:"type:text;not null"`
	FromUser          bool   `gorm:"not null"`
	AIGenerated       bool   `gorm:"not null;default:false"`
	AIConfidence      *float64
	Intent            string `gorm:"type:varchar(32);index"`
	TelegramMessageID *int
	CreatedAt         time.Time `gorm:"index"`
}

func (Message) TableName() string { return "messages" }

// InteractionEvent is the generic analytics record for every tracked user
// action. Payload holds event-specific detail as a JSON object.
type InteractionEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index;not null"`
	Type      string    `gorm:"type:varchar(32);index;not null"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (InteractionEvent) TableName() string { return "interaction_events" }

type ProductView struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      uint64 `gorm:"index;not null"`
	ProductID   int64  `gorm:"index;not null"`
	ProductName string `gorm:"type:varchar(255)"`
	ViewedAt    time.Time
}

func (ProductView) TableName() string { return "product_views" }

type OrderTracking struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	UserID      uint64 `gorm:"index;not null"`
	OrderNumber string `gorm:"type:varchar(64);index;not null"`
	Found       bool
	TrackedAt   time.Time
}

func (OrderTracking) TableName() string { return "order_trackings" }

// DailyRollup is one precomputed analytics row per calendar day. Rows are
// upserted in place and never deleted.
type DailyRollup struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Date         time.Time `gorm:"uniqueIndex;not null"`
	MessageCount int64
	UniqueUsers  int64
	NewUsers     int64
	BotResponses int64
	Escalations  int64
	ProductViews int64
	OrderLookups int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DailyRollup) TableName() string { return "daily_rollups" }
