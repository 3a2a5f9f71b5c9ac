package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fundbridge/donate/internal/application/pledgeservice"
	"github.com/fundbridge/donate/internal/application/statsservice"
	"github.com/fundbridge/donate/internal/server/middleware"
	"github.com/fundbridge/donate/internal/server/websocket"
	"github.com/fundbridge/donate/pkg/config"
)

type Handlers struct {
	PledgeSvc pledgeservice.IPledgeService
	StatsSvc  statsservice.IStatsService
	Flow      FlowDriver
	Search    TickerSearcher
	Cache     CacheClearer
	WsHub     *websocket.WsHub
	Checks    map[string]Check
	Version   string
	Logger    zerolog.Logger
	Config    *config.Config
}

func (h *Handlers) SetupHandlers(router *gin.Engine, mw *middleware.Middleware) {
	pledgeHandler := NewPledgeHandler(h.PledgeSvc, h.Logger)
	referenceHandler := NewReferenceHandler(h.PledgeSvc, h.Logger)
	statsHandler := NewStatsHandler(h.StatsSvc, h.Logger)
	kvHandler := NewKVHandler(h.Cache, h.Logger)
	flowHandler := NewFlowHandler(h.Flow, h.Search, h.Logger)
	wsHandler := NewWebSocketHandler(h.Flow, h.WsHub, h.Config.WebSocket, h.Logger)
	healthHandler := NewHealthHandler(h.Version, h.Checks)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	api := router.Group("/api")
	{
		// Pledge gateway
		api.POST("/createDepositAddress", pledgeHandler.CreateDepositAddress)
		api.POST("/createFiatDonationPledge", pledgeHandler.CreateFiatPledge)
		api.POST("/chargeFiatDonationPledge", pledgeHandler.ChargeFiatPledge)
		api.POST("/createStockDonationPledge", pledgeHandler.CreateStockPledge)
		api.POST("/submitStockDonation", pledgeHandler.SubmitStockDonation)
		api.POST("/signStockDonation", pledgeHandler.SignStockDonation)

		// Reference data
		api.GET("/getBrokersList", referenceHandler.Brokers)
		api.POST("/getTickerList", referenceHandler.Tickers)
		api.GET("/getTickerCost", referenceHandler.TickerCost)
		api.GET("/getCryptoRate", referenceHandler.CryptoRate)
		api.POST("/postCurrenciesList", referenceHandler.Currencies)
		api.GET("/getWidgetSnippet", referenceHandler.WidgetSnippet)

		// Aggregates
		api.GET("/getInfoTGB", statsHandler.ProjectFunding)
		api.GET("/stats", statsHandler.Stats)
		api.GET("/matching-donors-by-project", statsHandler.MatchingDonors)

		api.POST("/clearKV", middleware.CronAuth(h.Config.Security.CronSecret, h.Logger), kvHandler.Clear)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/flow", mw.OptionalIdentity(), flowHandler.Start)

		sessions := v1.Group("/flow/:session")
		{
			sessions.GET("", flowHandler.Get)
			sessions.DELETE("", flowHandler.Close)
			sessions.POST("/events", flowHandler.Event)
			sessions.POST("/submit", flowHandler.Submit)
			sessions.GET("/tickers", flowHandler.Tickers)
			sessions.GET("/ws", wsHandler.HandleConnection)
		}
	}
}
