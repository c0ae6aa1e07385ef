package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-bot/app/database"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/tasks"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

func NewHandler(deliveries database.DeliveryRepository, registry RegistryInterface,
	catalog i18n.Catalog, preferences *i18n.Preferences, jobs JobsInterface,
	scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		deliveries:  deliveries,
		registry:    registry,
		catalog:     catalog,
		preferences: preferences,
		jobs:        jobs,
		scheduler:   scheduler,
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":       "ok",
		"timestamp":    time.Now().In(time.Local).Format(time.RFC3339),
		"version":      h.version,
		"jobs":         h.jobs.Count(),
		"queue_length": h.scheduler.QueueLength(),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.deliveries.Stats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "delivery_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byKind := make(map[string]int, len(stats.ByKind))
	for _, kc := range stats.ByKind {
		byKind[kc.Kind] = kc.Count
	}

	languages := make(map[string]int)
	for lang, count := range h.preferences.CountByLanguage() {
		languages[lang.String()] = count
	}

	response := gin.H{
		"deliveries": gin.H{
			"total":        stats.Total,
			"chats":        stats.Chats,
			"by_kind":      byKind,
			"last_sent_at": stats.LastSentAt,
		},
		"preferences": gin.H{
			"chats":     h.preferences.Count(),
			"languages": languages,
		},
		"jobs": h.jobs.Count(),
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListCategories(c *gin.Context) {
	languages := make([]gin.H, 0)

	for _, lang := range h.registry.Languages() {
		keys, err := h.registry.AllCategories(lang)
		if err != nil {
			slog.Error("Registry error", "language", lang, "error", err)
			continue
		}

		var table *i18n.Strings
		if t, err := h.catalog.Get(lang); err == nil {
			table = t
		}

		categories := make([]gin.H, 0, len(keys))
		for _, key := range keys {
			feeds, err := h.registry.Resolve(lang, key)
			if err != nil {
				continue
			}

			name := key
			if table != nil {
				name = table.CategoryName(key)
			}

			categories = append(categories, gin.H{
				"key":   key,
				"name":  name,
				"feeds": feeds,
			})
		}

		languages = append(languages, gin.H{
			"language":   lang.String(),
			"categories": categories,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"prices":    h.registry.Prices(),
		"languages": languages,
	})
}

func (h *Handler) APIListJobs(c *gin.Context) {
	list := h.jobs.List()

	jobs := make([]gin.H, 0, len(list))
	for _, job := range list {
		jobs = append(jobs, gin.H{
			"id":         job.ID,
			"chat_id":    job.ChatID,
			"category":   job.Category,
			"interval":   job.Interval.String(),
			"created_at": job.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

func (h *Handler) APIListDeliveries(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat ID"})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}
	}

	recent, err := h.deliveries.Recent(c.Request.Context(), chatID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "recent_deliveries", "chat_id", chatID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	deliveries := make([]gin.H, 0, len(recent))
	for _, d := range recent {
		deliveries = append(deliveries, gin.H{
			"kind":     d.Kind,
			"category": d.Category,
			"language": d.Language,
			"title":    d.Title,
			"link":     d.Link,
			"sent_at":  d.SentAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"chat_id":    chatID,
		"deliveries": deliveries,
		"total":      len(deliveries),
	})
}
