package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/marketengine/base/clock"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/base/database/redisclient"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	bValidator "github.com/x-xyz/marketengine/base/validator"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/access"
	"github.com/x-xyz/marketengine/domain/event"
	"github.com/x-xyz/marketengine/domain/fee"
	hcdomain "github.com/x-xyz/marketengine/domain/healthcheck"
	mmiddleware "github.com/x-xyz/marketengine/middleware"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
	"github.com/x-xyz/marketengine/service/custody/memory"
	"github.com/x-xyz/marketengine/service/eventbus"
	"github.com/x-xyz/marketengine/service/notify"
	"github.com/x-xyz/marketengine/service/query"
	access_delivery "github.com/x-xyz/marketengine/stores/access/delivery/http"
	access_repository "github.com/x-xyz/marketengine/stores/access/repository"
	access_usecase "github.com/x-xyz/marketengine/stores/access/usecase"
	auction_delivery "github.com/x-xyz/marketengine/stores/auction/delivery/http"
	auction_repository "github.com/x-xyz/marketengine/stores/auction/repository"
	auction_usecase "github.com/x-xyz/marketengine/stores/auction/usecase"
	auth_delivery "github.com/x-xyz/marketengine/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/marketengine/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/marketengine/stores/auth/usecase"
	collection_delivery "github.com/x-xyz/marketengine/stores/collection/delivery/http"
	collection_repository "github.com/x-xyz/marketengine/stores/collection/repository"
	collection_usecase "github.com/x-xyz/marketengine/stores/collection/usecase"
	engine_usecase "github.com/x-xyz/marketengine/stores/engine/usecase"
	event_delivery "github.com/x-xyz/marketengine/stores/event/delivery/http"
	event_repository "github.com/x-xyz/marketengine/stores/event/repository"
	event_usecase "github.com/x-xyz/marketengine/stores/event/usecase"
	hc_delivery "github.com/x-xyz/marketengine/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/marketengine/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/marketengine/stores/healthcheck/usecase"
	listing_delivery "github.com/x-xyz/marketengine/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/marketengine/stores/listing/repository"
	listing_usecase "github.com/x-xyz/marketengine/stores/listing/usecase"
	offer_delivery "github.com/x-xyz/marketengine/stores/offer/delivery/http"
	offer_repository "github.com/x-xyz/marketengine/stores/offer/repository"
	offer_usecase "github.com/x-xyz/marketengine/stores/offer/usecase"
	revenue_delivery "github.com/x-xyz/marketengine/stores/revenue/delivery/http"
	revenue_repository "github.com/x-xyz/marketengine/stores/revenue/repository"
	revenue_usecase "github.com/x-xyz/marketengine/stores/revenue/usecase"
)

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.String("port", ":8080", "http listen address, overrides http.address")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("http.address", pflag.Lookup("port")); err != nil {
		panic(err)
	}

	log.SetDebug(viper.GetBool(`debug`))
	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func mustUnmarshal(key string, v interface{}) {
	if err := viper.UnmarshalKey(key, v); err != nil {
		log.Log().WithFields(log.Fields{"key": key, "err": err}).Panic("viper.UnmarshalKey failed")
	}
}

func main() {
	defer log.Sync()
	context := ctx.Background()

	engineAccount := domain.Address(viper.GetString("engine.account")).ToLower()
	rates := fee.Rates{}
	mustUnmarshal("engine.rates", &rates)
	if err := rates.Validate(); err != nil {
		context.WithFields(log.Fields{"rates": rates, "err": err}).Panic("invalid engine.rates")
	}

	// custody
	context.Info("init custody")
	gateway := memory.New(engineAccount)
	seed := memory.Seed{}
	mustUnmarshal("custody", &seed)
	if err := seed.Apply(gateway); err != nil {
		context.WithField("err", err).Panic("seed custody failed")
	}

	// event sinks
	sinks := []event.Sink{}
	pingers := []hcdomain.Pinger{}
	var eventUC event.UseCase

	if viper.GetString("mongo.uri") != "" {
		context.Info("init mongo")
		mongoCfg := mongoclient.Config{}
		mustUnmarshal("mongo", &mongoCfg)
		mongoClient := mongoclient.MustConnect(context, mongoCfg)
		q := query.New(mongoClient)
		if viper.GetBool("mongo.checkIndex") {
			if err := event_repository.EnsureIndexes(context, q); err != nil {
				context.WithField("err", err).Panic("event_repository.EnsureIndexes failed")
			}
		}
		eventRepo := event_repository.NewEvent(q)
		sinks = append(sinks, event_usecase.NewArchiveSink(eventRepo))
		eventUC = event_usecase.NewEvent(eventRepo)
		pingers = append(pingers, hc_repo.NewMongo(mongoClient))
	}

	if viper.GetString("redis_event.uri") != "" {
		context.Info("init redis event bus")
		redisCfg := redisclient.Config{}
		mustUnmarshal("redis_event", &redisCfg)
		redisPool := redisclient.MustConnect(redisCfg)
		channel := viper.GetString("redis_event.channel")
		if channel == "" {
			channel = eventbus.DefaultChannel
		}
		sinks = append(sinks, eventbus.NewRedis(redisPool, channel, metrics.New("eventbus")))
		pingers = append(pingers, hc_repo.NewRedis(redisPool))
	}

	if viper.GetString("discord.botKey") != "" {
		context.Info("init discord notifier")
		discordCfg := notify.Config{}
		mustUnmarshal("discord", &discordCfg)
		discord, err := notify.NewDiscord(discordCfg)
		if err != nil {
			context.WithField("err", err).Panic("notify.NewDiscord failed")
		}
		sinks = append(sinks, discord)
	}

	dispatcher := event_usecase.NewDispatcher(event_usecase.DispatcherCfg{
		Sinks:           sinks,
		QueueLength:     viper.GetInt("events.queueLength"),
		ScheduleTimeout: viper.GetDuration("events.scheduleTimeout"),
	})
	defer dispatcher.Close()

	// repositories
	accessRepo := access_repository.NewAccess(access.Config{
		Owner: domain.Address(viper.GetString("engine.owner")).ToLower(),
		Admin: domain.Address(viper.GetString("engine.admin")).ToLower(),
		Rates: rates,
	})
	collectionRepo := collection_repository.NewCollection()
	listingRepo := listing_repository.NewListing(listing_repository.RecencyCfg{
		Global:        viper.GetInt("engine.recency.global"),
		PerCollection: viper.GetInt("engine.recency.perCollection"),
	})
	offerRepo := offer_repository.NewOffer()
	auctionRepo := auction_repository.NewAuction(viper.GetInt("engine.recency.auctions"))
	revenueRepo := revenue_repository.NewRevenue()

	// usecases
	engineMetrics := metrics.New("engine")
	executor := engine_usecase.NewExecutor(&engine_usecase.ExecutorCfg{
		AccessRepo:  accessRepo,
		Clock:       clock.NewSystem(),
		Publisher:   dispatcher,
		Metrics:     engineMetrics,
		Account:     engineAccount,
		SlotTimeout: viper.GetDuration("engine.slotTimeout"),
	})
	accessUC := access_usecase.NewAccess(&access_usecase.AccessUseCaseCfg{
		Executor:       executor,
		AccessRepo:     accessRepo,
		CollectionRepo: collectionRepo,
	})
	collectionUC := collection_usecase.NewCollection(&collection_usecase.CollectionUseCaseCfg{
		Executor:       executor,
		CollectionRepo: collectionRepo,
		AccessRepo:     accessRepo,
	})
	revenueUC := revenue_usecase.NewRevenue(&revenue_usecase.RevenueUseCaseCfg{
		Executor:    executor,
		RevenueRepo: revenueRepo,
		Payment:     gateway,
	})
	settler := engine_usecase.NewSettler(&engine_usecase.SettlerCfg{
		Directory:  collectionUC,
		AccessRepo: accessRepo,
		Ledger:     revenueUC,
		Payment:    gateway,
		Metrics:    engineMetrics,
	})
	listingUC := listing_usecase.NewListing(&listing_usecase.ListingUseCaseCfg{
		Executor:    executor,
		Settler:     settler,
		ListingRepo: listingRepo,
		OfferRepo:   offerRepo,
		AuctionRepo: auctionRepo,
		Directory:   collectionUC,
		Gateway:     gateway,
	})
	offerUC := offer_usecase.NewOffer(&offer_usecase.OfferUseCaseCfg{
		Executor:    executor,
		Settler:     settler,
		OfferRepo:   offerRepo,
		ListingRepo: listingRepo,
		Gateway:     gateway,
	})
	auctionUC := auction_usecase.NewAuction(&auction_usecase.AuctionUseCaseCfg{
		Executor:    executor,
		Settler:     settler,
		AuctionRepo: auctionRepo,
		ListingRepo: listingRepo,
		Directory:   collectionUC,
		Gateway:     gateway,
	})
	hc := hc_usecase.New(accessUC, pingers...)

	signatureMsg := viper.GetString("auth.signatureMsg")
	auth := auth_usecase.New(auth_usecase.AuthUseCaseCfg{
		JwtSecret:    viper.GetString("auth.jwtSecret"),
		SignatureMsg: signatureMsg,
		NonceTTL:     viper.GetDuration("auth.nonceTTL"),
		TokenTTL:     viper.GetDuration("auth.tokenTTL"),
		Cache:        primitive.NewPrimitive("nonce", viper.GetInt("auth.nonceCacheMB")),
	})

	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware(metrics.New("http"))
	e.Use(middL.AddContext())
	e.Use(middL.ResponseLogger())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(validator.New())

	authMiddleware := auth_middleware.New(auth, accessUC)
	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth, signatureMsg)
	access_delivery.New(e, accessUC, authMiddleware)
	collection_delivery.New(e, collectionUC, authMiddleware)
	listing_delivery.New(e, listingUC, authMiddleware)
	offer_delivery.New(e, offerUC, authMiddleware)
	auction_delivery.New(e, auctionUC, authMiddleware)
	revenue_delivery.New(e, revenueUC, authMiddleware)
	if eventUC != nil {
		event_delivery.New(e, eventUC)
	}

	go func() {
		if err := e.Start(viper.GetString("http.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
