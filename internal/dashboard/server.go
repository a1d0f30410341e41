// Package dashboard serves the JSON analytics API consumed by the admin UI.
package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirrezasz77/telewpbot/internal/analytics"
	"github.com/amirrezasz77/telewpbot/internal/store"
)

// BotStatus is the small window the dashboard has into the running bot.
type BotStatus interface {
	MessagesProcessed() int64
}

type Server struct {
	engine    *gin.Engine
	addr      string
	db        *gorm.DB
	analytics *analytics.Service
	bot       BotStatus
	startedAt time.Time
}

func NewServer(addr string, db *gorm.DB, svc *analytics.Service, bot BotStatus) *Server {
	s := &Server{
		addr:      addr,
		db:        db,
		analytics: svc,
		bot:       bot,
		startedAt: time.Now(),
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID())

	api := r.Group("/api")
	api.GET("/overview", s.overview)
	api.GET("/popular-products", s.popularProducts)
	api.GET("/conversations", s.conversations)
	api.GET("/bot/status", s.botStatus)
	api.GET("/analytics/users", s.userAnalytics)
	api.GET("/analytics/conversations", s.conversationAnalytics)
	api.GET("/analytics/ai", s.aiAnalytics)
	api.GET("/analytics/satisfaction", s.satisfactionAnalytics)
	api.GET("/database/status", s.databaseStatus)

	s.engine = r
	return s
}

// Run blocks serving the API until the listener fails.
func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) overview(c *gin.Context) {
	c.JSON(http.StatusOK, s.analytics.Overview(c.Request.Context()))
}

func (s *Server) popularProducts(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 10)
	if !ok {
		return
	}
	ranks := s.analytics.PopularProducts(c.Request.Context(), limit)
	if ranks == nil {
		ranks = []analytics.ProductRank{}
	}
	c.JSON(http.StatusOK, ranks)
}

func (s *Server) conversations(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 20)
	if !ok {
		return
	}
	summaries := s.analytics.RecentConversations(c.Request.Context(), limit)
	if summaries == nil {
		summaries = []analytics.ConversationSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) botStatus(c *gin.Context) {
	var processed int64
	if s.bot != nil {
		processed = s.bot.MessagesProcessed()
	}
	c.JSON(http.StatusOK, gin.H{
		"running":            s.bot != nil,
		"uptime_seconds":     int64(time.Since(s.startedAt).Seconds()),
		"messages_processed": processed,
	})
}

func (s *Server) userAnalytics(c *gin.Context) {
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.analytics.UserActivity(c.Request.Context(), days))
}

func (s *Server) conversationAnalytics(c *gin.Context) {
	days, ok := intQuery(c, "days", 7)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.analytics.ConversationStats(c.Request.Context(), days))
}

func (s *Server) aiAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, s.analytics.AIPerformance(c.Request.Context()))
}

func (s *Server) satisfactionAnalytics(c *gin.Context) {
	days, ok := intQuery(c, "days", 30)
	if !ok {
		return
	}
	series := s.analytics.SatisfactionTrends(c.Request.Context(), days)
	if series == nil {
		series = []analytics.SatisfactionDay{}
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) databaseStatus(c *gin.Context) {
	db := s.db.WithContext(c.Request.Context())
	tables := map[string]any{
		"users":              &store.User{},
		"conversations":      &store.Conversation{},
		"messages":           &store.Message{},
		"interaction_events": &store.InteractionEvent{},
		"product_views":      &store.ProductView{},
		"order_trackings":    &store.OrderTracking{},
		"daily_rollups":      &store.DailyRollup{},
	}
	counts := make(map[string]int64, len(tables))
	for name, model := range tables {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		counts[name] = n
	}
	c.JSON(http.StatusOK, counts)
}

// intQuery parses a positive integer query parameter, writing the error
// response itself when the value is unusable.
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return n, true
}
