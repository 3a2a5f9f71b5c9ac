package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	authservice "github.com/fundbridge/donate/internal/application/auth"
	"github.com/fundbridge/donate/internal/application/pledgeservice"
	"github.com/fundbridge/donate/internal/application/statsservice"
	"github.com/fundbridge/donate/internal/flow"
	"github.com/fundbridge/donate/internal/infrastructure/clients"
	"github.com/fundbridge/donate/internal/infrastructure/database"
	"github.com/fundbridge/donate/internal/repositories/donationrepo"
	"github.com/fundbridge/donate/internal/repositories/matchingrepo"
	"github.com/fundbridge/donate/internal/server"
	"github.com/fundbridge/donate/internal/server/handlers"
	"github.com/fundbridge/donate/internal/server/websocket"
)

var serveMigrate bool

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the donation flow",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveMigrate {
		if _, err := database.Migrate(ctx, a.db.Db, a.logger); err != nil {
			return err
		}
	}

	donationRepo := donationrepo.New(a.db, a.logger)
	matchingRepo := matchingrepo.New(a.db, a.logger)
	paymentClient := clients.NewPaymentClient(a.cfg.PaymentAPI, a.tokens(), a.logger)

	pledgeSvc := pledgeservice.New(paymentClient, donationRepo, a.cache, a.cfg.Organization, a.cfg.Cache, a.logger)
	statsSvc := statsservice.New(donationRepo, matchingRepo, a.cache, a.cfg.Cache.StatsTTL, a.logger)
	authSvc := authservice.NewAuthService(a.cfg.Security, a.logger)

	hub := websocket.NewWsHub(a.logger)
	go hub.Run(ctx)

	store := flow.NewRedisStore(a.redis, a.cfg.Flow.SessionTTL)
	driver := flow.NewDriver(pledgeSvc, store, hub, a.cfg.Organization, a.cfg.Flow, a.logger)
	search := flow.NewTickerSearch(pledgeSvc, a.cfg.Flow)

	h := &handlers.Handlers{
		PledgeSvc: pledgeSvc,
		StatsSvc:  statsSvc,
		Flow:      driver,
		Search:    search,
		Cache:     a.cache,
		WsHub:     hub,
		Checks: map[string]handlers.Check{
			"database": a.db.Ping,
			"cache":    a.cache.Ping,
		},
		Version: Version,
		Logger:  a.logger,
		Config:  a.cfg,
	}

	srv := server.New(a.cfg, h, authSvc, a.logger)
	return srv.Start(ctx)
}
