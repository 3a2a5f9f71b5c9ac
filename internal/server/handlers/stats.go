package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/application/statsservice"
	"github.com/fundbridge/donate/internal/domain"
)

type StatsHandler struct {
	statsSvc statsservice.IStatsService
	logger   zerolog.Logger
}

func NewStatsHandler(statsSvc statsservice.IStatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		statsSvc: statsSvc,
		logger:   logger.With().Str("component", "stats_handler").Logger(),
	}
}

// ProjectFunding backs the project page counters.
func (h *StatsHandler) ProjectFunding(c *gin.Context) {
	funding, err := h.statsSvc.ProjectFunding(c.Request.Context(), c.Query("slug"))
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("slug", c.Query("slug")).Msg("Failed to aggregate project funding")
			msg = err.Error()
		}
		c.JSON(status, gin.H{"message": msg})
		return
	}
	c.JSON(http.StatusOK, funding)
}

func (h *StatsHandler) Stats(c *gin.Context) {
	stats, err := h.statsSvc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type matchingDonorResponse struct {
	MatchingDonorID string  `json:"matchingDonorId"`
	Name            string  `json:"name"`
	TotalMatched    float64 `json:"totalMatched"`
}

func (h *StatsHandler) MatchingDonors(c *gin.Context) {
	donors, err := h.statsSvc.MatchingDonors(c.Request.Context(), c.Query("slug"))
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("slug", c.Query("slug")).Msg("Failed to fetch matching donors")
			msg = "Failed to fetch matching donors"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, toMatchingDonorResponse(donors))
}

func toMatchingDonorResponse(donors []domain.MatchingDonorTotal) []matchingDonorResponse {
	out := make([]matchingDonorResponse, 0, len(donors))
	for _, d := range donors {
		out = append(out, matchingDonorResponse{
			MatchingDonorID: d.MatchingDonorID,
			Name:            d.Name,
			TotalMatched:    d.TotalMatched.InexactFloat64(),
		})
	}
	return out
}
