package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/domain"
	"github.com/fundbridge/donate/internal/flow"
	"github.com/fundbridge/donate/internal/server/middleware"
)

type FlowDriver interface {
	Start(ctx context.Context, claims *domain.DonorClaims) (string, flow.State, error)
	Get(ctx context.Context, session string) (flow.State, error)
	Dispatch(ctx context.Context, session string, ev flow.Event) (flow.State, error)
	Submit(ctx context.Context, session string) (flow.State, error)
	Close(ctx context.Context, session string) error
}

type TickerSearcher interface {
	Search(ctx context.Context, session, query string) ([]domain.Ticker, error)
}

// FlowHandler runs server-side donation sessions.
type FlowHandler struct {
	driver FlowDriver
	search TickerSearcher
	logger zerolog.Logger
}

func NewFlowHandler(driver FlowDriver, search TickerSearcher, logger zerolog.Logger) *FlowHandler {
	return &FlowHandler{
		driver: driver,
		search: search,
		logger: logger.With().Str("component", "flow_handler").Logger(),
	}
}

type flowResponse struct {
	Session string            `json:"session"`
	State   flow.State        `json:"state"`
	Errors  []flow.FieldError `json:"errors"`
}

func (h *FlowHandler) respond(c *gin.Context, status int, session string, s flow.State) {
	errs := flow.Validate(s)
	if errs == nil {
		errs = []flow.FieldError{}
	}
	c.JSON(status, flowResponse{Session: session, State: s, Errors: errs})
}

func (h *FlowHandler) fail(c *gin.Context, session string, err error) {
	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Donation session not found"})
	default:
		h.logger.Error().Err(err).Str("session", session).Msg("Flow request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func (h *FlowHandler) Start(c *gin.Context) {
	session, s, err := h.driver.Start(c.Request.Context(), middleware.DonorClaims(c))
	if err != nil {
		h.fail(c, "", err)
		return
	}
	h.respond(c, http.StatusCreated, session, s)
}

func (h *FlowHandler) Get(c *gin.Context) {
	session := c.Param("session")
	s, err := h.driver.Get(c.Request.Context(), session)
	if err != nil {
		h.fail(c, session, err)
		return
	}
	h.respond(c, http.StatusOK, session, s)
}

// Event applies one {"type": ..., "payload": ...} event.
func (h *FlowHandler) Event(c *gin.Context) {
	session := c.Param("session")
	body, err := c.GetRawData()
	if err != nil {
		invalidBody(c)
		return
	}
	ev, err := flow.DecodeEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.driver.Dispatch(c.Request.Context(), session, ev)
	if err != nil {
		h.fail(c, session, err)
		return
	}
	h.respond(c, http.StatusOK, session, s)
}

func (h *FlowHandler) Submit(c *gin.Context) {
	session := c.Param("session")
	s, err := h.driver.Submit(c.Request.Context(), session)
	switch {
	case errors.Is(err, flow.ErrSubmitInFlight):
		h.respond(c, http.StatusConflict, session, s)
	case errors.Is(err, flow.ErrStepNotReady):
		h.respond(c, http.StatusBadRequest, session, s)
	case err != nil:
		h.fail(c, session, err)
	default:
		h.respond(c, http.StatusOK, session, s)
	}
}

func (h *FlowHandler) Close(c *gin.Context) {
	session := c.Param("session")
	if err := h.driver.Close(c.Request.Context(), session); err != nil {
		h.fail(c, session, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlowHandler) Tickers(c *gin.Context) {
	session := c.Param("session")
	if _, err := h.driver.Get(c.Request.Context(), session); err != nil {
		h.fail(c, session, err)
		return
	}
	tickers, err := h.search.Search(c.Request.Context(), session, c.Query("q"))
	if errors.Is(err, flow.ErrSuperseded) {
		c.JSON(http.StatusOK, gin.H{"tickers": []domain.Ticker{}, "superseded": true})
		return
	}
	if err != nil {
		respondError(c, h.logger, "flowTickers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickers": tickers, "superseded": false})
}
