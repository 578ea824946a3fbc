package main

import (
	"database/sql"
	"log"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"vedaBack/internal/config"
	"vedaBack/internal/handlers"
	"vedaBack/internal/pricing"
	"vedaBack/internal/ratelimit"
	"vedaBack/internal/repositories"
	"vedaBack/internal/services"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	db       *sql.DB

	offerHandler       *handlers.OfferHandler
	requestHandler     *handlers.RequestHandler
	creditHandler      *handlers.CreditHandler
	sweepHandler       *handlers.SweepHandler
	pricingHandler     *handlers.PricingHandler
	deviceTokenHandler *handlers.DeviceTokenHandler

	sweeperService *services.SweeperService

	createLimiter *ratelimit.Limiter
	acceptLimiter *ratelimit.Limiter
	adjustLimiter *ratelimit.Limiter
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, fcm *messaging.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	offerRepo := repositories.OfferRepository{DB: db}
	requestRepo := repositories.RequestRepository{DB: db}
	ledgerRepo := repositories.LedgerRepository{DB: db}
	tokenRepo := repositories.DeviceTokenRepository{DB: db}

	// Limiters, one named counter per mutating operation
	rl := cfg.Engine.RateLimit
	createLimiter := ratelimit.New("createOffer", ratelimit.Config{Window: rl.Window(), Max: rl.MaxFor("createOffer")}, rdb, errorLog)
	acceptLimiter := ratelimit.New("acceptOffer", ratelimit.Config{Window: rl.Window(), Max: rl.MaxFor("acceptOffer")}, rdb, errorLog)
	adjustLimiter := ratelimit.New("adjustCredits", ratelimit.Config{Window: rl.Window(), Max: rl.MaxFor("adjustCredits")}, rdb, errorLog)

	// Services
	notifyService := &services.NotifyService{Client: fcm, Tokens: &tokenRepo, ErrorLog: errorLog}
	offerService := &services.OfferService{
		OfferRepo:     &offerRepo,
		RequestRepo:   &requestRepo,
		Pricing:       pricing.NewResolver(cfg.Engine.Pricing),
		CreateLimiter: createLimiter,
		AcceptLimiter: acceptLimiter,
		Notifier:      notifyService,
	}
	requestService := &services.RequestService{RequestRepo: &requestRepo}
	creditService := &services.CreditService{LedgerRepo: &ledgerRepo, AdjustLimiter: adjustLimiter}
	sweeperService := &services.SweeperService{
		OfferRepo: &offerRepo,
		SLAWindow: cfg.Engine.SLAWindow(),
		Notifier:  notifyService,
		InfoLog:   infoLog,
		ErrorLog:  errorLog,
	}

	return &application{
		errorLog: errorLog,
		infoLog:  infoLog,
		db:       db,

		offerHandler:       &handlers.OfferHandler{Service: offerService},
		requestHandler:     &handlers.RequestHandler{Service: requestService},
		creditHandler:      &handlers.CreditHandler{Service: creditService},
		sweepHandler:       &handlers.SweepHandler{Service: sweeperService},
		pricingHandler:     &handlers.PricingHandler{Service: offerService},
		deviceTokenHandler: &handlers.DeviceTokenHandler{Repo: &tokenRepo},

		sweeperService: sweeperService,

		createLimiter: createLimiter,
		acceptLimiter: acceptLimiter,
		adjustLimiter: adjustLimiter,
	}
}

func (app *application) limiters() []*ratelimit.Limiter {
	return []*ratelimit.Limiter{app.createLimiter, app.acceptLimiter, app.adjustLimiter}
}
