package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CacheClearer interface {
	Clear(ctx context.Context) (int, error)
}

type KVHandler struct {
	cache  CacheClearer
	logger zerolog.Logger
}

func NewKVHandler(cache CacheClearer, logger zerolog.Logger) *KVHandler {
	return &KVHandler{
		cache:  cache,
		logger: logger.With().Str("component", "kv_handler").Logger(),
	}
}

// Clear drops every cached key. Mounted behind CronAuth.
func (h *KVHandler) Clear(c *gin.Context) {
	deleted, err := h.cache.Clear(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Error clearing KV")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to clear KV data.",
			"details": err.Error(),
		})
		return
	}
	if deleted == 0 {
		h.logger.Info().Msg("KV store is already empty.")
		c.JSON(http.StatusOK, gin.H{"message": "KV store is already empty."})
		return
	}
	h.logger.Info().Int("deleted", deleted).Msg("All KV data cleared successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "All KV data cleared successfully."})
}
