// Package analytics aggregates the stored interaction data into the counts,
// rates and time series the dashboard serves. Reads never fail upward: a
// query error is logged and the zero value returned, so the dashboard stays
// up in degraded form.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/amirrezasz77/telewpbot/internal/store"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Overview struct {
	TotalUsers         int64   `json:"total_users"`
	TotalConversations int64   `json:"total_conversations"`
	TotalMessages      int64   `json:"total_messages"`
	ActiveUsers7d      int64   `json:"active_users_7d"`
	Escalations30d     int64   `json:"escalations_30d"`
	MessagesToday      int64   `json:"messages_today"`
	AutomationRate     float64 `json:"automation_rate"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
}

// Overview computes the headline numbers shown at the top of the dashboard.
func (s *Service) Overview(ctx context.Context) Overview {
	var o Overview
	db := s.db.WithContext(ctx)
	now := time.Now()

	s.count(db.Model(&store.User{}), &o.TotalUsers, "total users")
	s.count(db.Model(&store.Conversation{}), &o.TotalConversations, "total conversations")
	s.count(db.Model(&store.Message{}), &o.TotalMessages, "total messages")
	s.count(db.Model(&store.User{}).Where("last_interaction >= ?", now.AddDate(0, 0, -7)), &o.ActiveUsers7d, "active users")
	s.count(db.Model(&store.Conversation{}).Where("escalated_at IS NOT NULL AND escalated_at >= ?", now.AddDate(0, 0, -30)), &o.Escalations30d, "escalations")
	s.count(db.Model(&store.Message{}).Where("created_at >= ?", startOfDay(now)), &o.MessagesToday, "messages today")

	var escalatedEver int64
	s.count(db.Model(&store.Conversation{}).Where("escalated_at IS NOT NULL"), &escalatedEver, "escalated conversations")
	if o.TotalConversations > 0 {
		o.AutomationRate = 1 - float64(escalatedEver)/float64(o.TotalConversations)
	}

	var avg *float64
	if err := db.Model(&store.Conversation{}).
		Where("satisfaction_rating IS NOT NULL").
		Select("AVG(satisfaction_rating)").
		Scan(&avg).Error; err != nil {
		log.Printf("analytics: average satisfaction: %v", err)
	} else if avg != nil {
		o.AvgSatisfaction = *avg
	}
	return o
}

type ConversationDay struct {
	Date          string `json:"date"`
	Conversations int64  `json:"conversations"`
	Messages      int64  `json:"messages"`
}

// ConversationStats returns one entry per day for the last days days, oldest
// first, with zero rows for days without traffic.
func (s *Service) ConversationStats(ctx context.Context, days int) []ConversationDay {
	if days <= 0 {
		days = 7
	}
	since := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	db := s.db.WithContext(ctx)

	buckets := make(map[string]*ConversationDay, days)
	series := make([]ConversationDay, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = ConversationDay{Date: day}
		buckets[day] = &series[i]
	}

	var convs []store.Conversation
	if err := db.Where("started_at >= ?", since).Find(&convs).Error; err != nil {
		log.Printf("analytics: conversation series: %v", err)
		return series
	}
	for _, c := range convs {
		if b, ok := buckets[c.StartedAt.Format("2006-01-02")]; ok {
			b.Conversations++
		}
	}

	var msgs []store.Message
	if err := db.Where("created_at >= ?", since).Find(&msgs).Error; err != nil {
		log.Printf("analytics: message series: %v", err)
		return series
	}
	for _, m := range msgs {
		if b, ok := buckets[m.CreatedAt.Format("2006-01-02")]; ok {
			b.Messages++
		}
	}
	return series
}

type ProductRank struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Views       int64  `json:"views"`
}

// PopularProducts ranks products by view count over the last 30 days.
func (s *Service) PopularProducts(ctx context.Context, limit int) []ProductRank {
	if limit <= 0 {
		limit = 10
	}
	var ranks []ProductRank
	err := s.db.WithContext(ctx).
		Model(&store.ProductView{}).
		Select("product_id, product_name, COUNT(*) AS views").
		Where("viewed_at >= ?", time.Now().AddDate(0, 0, -30)).
		Group("product_id, product_name").
		Order("views DESC").
		Limit(limit).
		Scan(&ranks).Error
	if err != nil {
		log.Printf("analytics: popular products: %v", err)
		return nil
	}
	return ranks
}

type UserActivityDay struct {
	Date        string `json:"date"`
	NewUsers    int64  `json:"new_users"`
	ActiveUsers int64  `json:"active_users"`
}

// UserActivity reports per-day new registrations and distinct active users.
func (s *Service) UserActivity(ctx context.Context, days int) []UserActivityDay {
	if days <= 0 {
		days = 7
	}
	since := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))
	db := s.db.WithContext(ctx)

	buckets := make(map[string]*UserActivityDay, days)
	series := make([]UserActivityDay, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = UserActivityDay{Date: day}
		buckets[day] = &series[i]
	}

	var users []store.User
	if err := db.Where("created_at >= ?", since).Find(&users).Error; err != nil {
		log.Printf("analytics: new users: %v", err)
		return series
	}
	for _, u := range users {
		if b, ok := buckets[u.CreatedAt.Format("2006-01-02")]; ok {
			b.NewUsers++
		}
	}

	var events []store.InteractionEvent
	if err := db.Where("created_at >= ?", since).Find(&events).Error; err != nil {
		log.Printf("analytics: interaction events: %v", err)
		return series
	}
	seen := make(map[string]map[uint64]bool)
	for _, e := range events {
		day := e.CreatedAt.Format("2006-01-02")
		if seen[day] == nil {
			seen[day] = make(map[uint64]bool)
		}
		if !seen[day][e.UserID] {
			seen[day][e.UserID] = true
			if b, ok := buckets[day]; ok {
				b.ActiveUsers++
			}
		}
	}
	return series
}

type InteractionCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// InteractionBreakdown ranks event types over the last 30 days.
func (s *Service) InteractionBreakdown(ctx context.Context) []InteractionCount {
	var counts []InteractionCount
	err := s.db.WithContext(ctx).
		Model(&store.InteractionEvent{}).
		Select("type, COUNT(*) AS count").
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).
		Group("type").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		log.Printf("analytics: interaction breakdown: %v", err)
		return nil
	}
	return counts
}

type HistogramBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type AIPerformance struct {
	TotalResponses int64             `json:"total_responses"`
	AvgConfidence  float64           `json:"avg_confidence"`
	Histogram      []HistogramBucket `json:"confidence_histogram"`
	EscalationRate float64           `json:"escalation_rate"`
}

// AIPerformance summarizes generated replies: mean confidence, a five-bucket
// confidence histogram and the share of conversations that escalated.
func (s *Service) AIPerformance(ctx context.Context) AIPerformance {
	db := s.db.WithContext(ctx)
	perf := AIPerformance{Histogram: make([]HistogramBucket, 5)}
	for i := range perf.Histogram {
		perf.Histogram[i].Range = fmt.Sprintf("%.1f-%.1f", float64(i)*0.2, float64(i+1)*0.2)
	}

	var msgs []store.Message
	if err := db.Where("ai_generated = ?", true).Find(&msgs).Error; err != nil {
		log.Printf("analytics: ai responses: %v", err)
		return perf
	}
	var sum float64
	for _, m := range msgs {
		var confidence float64
		if m.AIConfidence != nil {
			confidence = *m.AIConfidence
		}
		perf.TotalResponses++
		sum += confidence
		bucket := int(confidence / 0.2)
		if bucket > 4 {
			bucket = 4
		}
		if bucket < 0 {
			bucket = 0
		}
		perf.Histogram[bucket].Count++
	}
	if perf.TotalResponses > 0 {
		perf.AvgConfidence = sum / float64(perf.TotalResponses)
	}

	var total, escalated int64
	s.count(db.Model(&store.Conversation{}), &total, "conversations")
	s.count(db.Model(&store.Conversation{}).Where("escalated_at IS NOT NULL"), &escalated, "escalated conversations")
	if total > 0 {
		perf.EscalationRate = float64(escalated) / float64(total)
	}
	return perf
}

type SatisfactionDay struct {
	Date      string  `json:"date"`
	AvgRating float64 `json:"avg_rating"`
	Ratings   int64   `json:"ratings"`
}

// SatisfactionTrends averages ratings by the day the conversation ended.
func (s *Service) SatisfactionTrends(ctx context.Context, days int) []SatisfactionDay {
	if days <= 0 {
		days = 30
	}
	since := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))

	var convs []store.Conversation
	err := s.db.WithContext(ctx).
		Where("satisfaction_rating IS NOT NULL AND ended_at >= ?", since).
		Find(&convs).Error
	if err != nil {
		log.Printf("analytics: satisfaction trends: %v", err)
		return nil
	}

	type acc struct {
		sum   int
		count int64
	}
	byDay := make(map[string]*acc)
	for _, c := range convs {
		day := c.EndedAt.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = &acc{}
		}
		byDay[day].sum += *c.SatisfactionRating
		byDay[day].count++
	}

	var series []SatisfactionDay
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		a, ok := byDay[day]
		if !ok {
			continue
		}
		series = append(series, SatisfactionDay{
			Date:      day,
			AvgRating: float64(a.sum) / float64(a.count),
			Ratings:   a.count,
		})
	}
	return series
}

type ConversationSummary struct {
	ID           uint64    `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	Status       string    `json:"status"`
	Subject      string    `json:"subject"`
	StartedAt    time.Time `json:"started_at"`
	MessageCount int64     `json:"message_count"`
}

// RecentConversations lists the newest conversations with their owners.
func (s *Service) RecentConversations(ctx context.Context, limit int) []ConversationSummary {
	if limit <= 0 {
		limit = 20
	}
	db := s.db.WithContext(ctx)

	var convs []store.Conversation
	if err := db.Order("started_at DESC").Limit(limit).Find(&convs).Error; err != nil {
		log.Printf("analytics: recent conversations: %v", err)
		return nil
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summary := ConversationSummary{
			ID:        c.ID,
			Status:    string(c.Status),
			Subject:   c.Subject,
			StartedAt: c.StartedAt,
		}
		var u store.User
		if err := db.First(&u, c.UserID).Error; err == nil {
			summary.TelegramID = u.TelegramID
			summary.Username = u.Username
		}
		s.count(db.Model(&store.Message{}).Where("conversation_id = ?", c.ID), &summary.MessageCount, "conversation messages")
		summaries = append(summaries, summary)
	}
	return summaries
}

// UpsertDailyRollup recomputes the counters for date's calendar day and
// writes exactly one row for it, overwriting a previous run.
func (s *Service) UpsertDailyRollup(ctx context.Context, date time.Time) error {
	day := startOfDay(date)
	next := day.AddDate(0, 0, 1)
	db := s.db.WithContext(ctx)

	rollup := store.DailyRollup{Date: day}
	queries := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&rollup.MessageCount, db.Model(&store.Message{}).Where("from_user = ? AND created_at >= ? AND created_at < ?", true, day, next)},
		{&rollup.BotResponses, db.Model(&store.Message{}).Where("ai_generated = ? AND created_at >= ? AND created_at < ?", true, day, next)},
		{&rollup.NewUsers, db.Model(&store.User{}).Where("created_at >= ? AND created_at < ?", day, next)},
		{&rollup.Escalations, db.Model(&store.Conversation{}).Where("escalated_at >= ? AND escalated_at < ?", day, next)},
		{&rollup.ProductViews, db.Model(&store.ProductView{}).Where("viewed_at >= ? AND viewed_at < ?", day, next)},
		{&rollup.OrderLookups, db.Model(&store.OrderTracking{}).Where("tracked_at >= ? AND tracked_at < ?", day, next)},
	}
	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			return fmt.Errorf("rollup count: %w", err)
		}
	}
	if err := db.Model(&store.InteractionEvent{}).
		Where("created_at >= ? AND created_at < ?", day, next).
		Distinct("user_id").
		Count(&rollup.UniqueUsers).Error; err != nil {
		return fmt.Errorf("rollup unique users: %w", err)
	}

	var existing store.DailyRollup
	err := db.Where("date = ?", day).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Create(&rollup).Error; err != nil {
			return fmt.Errorf("create rollup: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load rollup: %w", err)
	}

	rollup.ID = existing.ID
	rollup.CreatedAt = existing.CreatedAt
	if err := db.Save(&rollup).Error; err != nil {
		return fmt.Errorf("update rollup: %w", err)
	}
	return nil
}

func (s *Service) count(q *gorm.DB, dest *int64, what string) {
	if err := q.Count(dest).Error; err != nil {
		log.Printf("analytics: count %s: %v", what, err)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
