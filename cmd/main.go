package main

import (
	"context"
	"os"

	auctionapp "github.com/agromarket/auctionengine/internal/auction/application"
	auctionhttp "github.com/agromarket/auctionengine/internal/auction/infra/http"
	auctionpg "github.com/agromarket/auctionengine/internal/auction/infra/repository/postgres"
	auctionws "github.com/agromarket/auctionengine/internal/auction/infra/websocket"
	pricingapp "github.com/agromarket/auctionengine/internal/pricing/application"
	pricinghttp "github.com/agromarket/auctionengine/internal/pricing/infra/http"
	pricingpg "github.com/agromarket/auctionengine/internal/pricing/infra/repository/postgres"
	"github.com/agromarket/auctionengine/internal/shared/auth"
	"github.com/agromarket/auctionengine/internal/shared/clock"
	"github.com/agromarket/auctionengine/internal/shared/db"
	"github.com/agromarket/auctionengine/internal/shared/db/migrations"
	"github.com/agromarket/auctionengine/internal/shared/httpserver"
	"github.com/agromarket/auctionengine/internal/shared/logger"
	sharedws "github.com/agromarket/auctionengine/internal/shared/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting agromarket auction engine...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	oracleAdmin, err := uuid.Parse(os.Getenv("ORACLE_ADMIN_ID"))
	if err != nil {
		log.Fatal("ORACLE_ADMIN_ID must be a valid UUID", zap.Error(err))
	}

	hub := sharedws.NewHub()
	go hub.Run(ctx)

	clk := clock.System{}
	authorizer := auth.ContextAuthorizer{}
	events := auctionws.NewHubPublisher(hub)

	auctionRepo := auctionpg.NewAuctionRepository(pool)
	catalog := auctionpg.NewProductCatalog(pool)
	auctionService := auctionapp.NewAuctionService(auctionRepo, catalog, auctionRepo, clk, authorizer, events)

	priceRepo := pricingpg.NewMarketPriceRepository(pool)
	pricingService := pricingapp.NewPricingService(priceRepo, clk, authorizer,
		pricingapp.OracleConfig{Admin: oracleAdmin})

	wsHandler := auctionws.NewAuctionWSHandler(auctionService, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	app := server.App()
	app.Use(auctionhttp.PrincipalMiddleware())
	auctionhttp.NewAuctionHandler(auctionService).RegisterRoutes(app)
	pricinghttp.NewPricingHandler(pricingService).RegisterRoutes(app)
	auctionws.RegisterRoutes(ctx, app, hub)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
