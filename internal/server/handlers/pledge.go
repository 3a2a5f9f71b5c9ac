package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/application/pledgeservice"
	"github.com/fundbridge/donate/internal/domain"
)

// PledgeHandler exposes the pledge gateway to the browser. Every route is a
// thin wrapper: bind, call the service, map the error.
type PledgeHandler struct {
	pledgeSvc pledgeservice.IPledgeService
	logger    zerolog.Logger
}

func NewPledgeHandler(pledgeSvc pledgeservice.IPledgeService, logger zerolog.Logger) *PledgeHandler {
	return &PledgeHandler{
		pledgeSvc: pledgeSvc,
		logger:    logger.With().Str("component", "pledge_handler").Logger(),
	}
}

func (h *PledgeHandler) CreateDepositAddress(c *gin.Context) {
	var req domain.PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	res, err := h.pledgeSvc.CreateDepositAddress(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "createDepositAddress", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) CreateFiatPledge(c *gin.Context) {
	var req domain.PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	res, err := h.pledgeSvc.CreateFiatPledge(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "createFiatDonationPledge", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) ChargeFiatPledge(c *gin.Context) {
	var req domain.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	res, err := h.pledgeSvc.ChargeFiatPledge(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "chargeFiatDonationPledge", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) CreateStockPledge(c *gin.Context) {
	var req domain.StockPledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	res, err := h.pledgeSvc.CreateStockPledge(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "createStockDonationPledge", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PledgeHandler) SubmitStockDonation(c *gin.Context) {
	var req domain.BrokerSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	raw, err := h.pledgeSvc.SubmitStockDonation(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "submitStockDonation", err)
		return
	}
	passthrough(c, raw)
}

func (h *PledgeHandler) SignStockDonation(c *gin.Context) {
	var req domain.SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	res, err := h.pledgeSvc.SignStockDonation(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "signStockDonation", err)
		return
	}
	passthrough(c, res.Raw)
}

// passthrough returns an upstream JSON body untouched.
func passthrough(c *gin.Context, raw []byte) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
