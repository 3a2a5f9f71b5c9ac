package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/application/pledgeservice"
	"github.com/fundbridge/donate/internal/domain"
)

// ReferenceHandler serves the lookup data the donation form needs: brokers,
// tickers, prices, currencies and the widget snippet.
type ReferenceHandler struct {
	pledgeSvc pledgeservice.IPledgeService
	logger    zerolog.Logger
}

func NewReferenceHandler(pledgeSvc pledgeservice.IPledgeService, logger zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		pledgeSvc: pledgeSvc,
		logger:    logger.With().Str("component", "reference_handler").Logger(),
	}
}

func (h *ReferenceHandler) Brokers(c *gin.Context) {
	raw, err := h.pledgeSvc.Brokers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "getBrokersList", err)
		return
	}
	passthrough(c, raw)
}

func (h *ReferenceHandler) Tickers(c *gin.Context) {
	var query domain.TickerQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		invalidBody(c)
		return
	}
	page, err := h.pledgeSvc.Tickers(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, "getTickerList", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *ReferenceHandler) TickerCost(c *gin.Context) {
	res, err := h.pledgeSvc.TickerCost(c.Request.Context(), c.Query("ticker"))
	if err != nil {
		respondError(c, h.logger, "getTickerCost", err)
		return
	}
	passthrough(c, res.Raw)
}

func (h *ReferenceHandler) CryptoRate(c *gin.Context) {
	res, err := h.pledgeSvc.CryptoRate(c.Request.Context(), c.Query("currency"))
	if err != nil {
		respondMessage(c, h.logger, "getCryptoRate", err)
		return
	}
	passthrough(c, res.Raw)
}

func (h *ReferenceHandler) Currencies(c *gin.Context) {
	raw, err := h.pledgeSvc.Currencies(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "postCurrenciesList", err)
		return
	}
	passthrough(c, raw)
}

func (h *ReferenceHandler) WidgetSnippet(c *gin.Context) {
	raw, err := h.pledgeSvc.WidgetSnippet(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "getWidgetSnippet", err)
		return
	}
	passthrough(c, raw)
}
