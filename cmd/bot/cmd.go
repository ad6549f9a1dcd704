package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dkhomenko/spendbot/internal/bootstrap"
	"github.com/dkhomenko/spendbot/internal/bot"
	"github.com/dkhomenko/spendbot/internal/cache"
	"github.com/dkhomenko/spendbot/internal/config"
	"github.com/dkhomenko/spendbot/internal/fx"
	"github.com/dkhomenko/spendbot/internal/handlers"
	"github.com/dkhomenko/spendbot/internal/models"
	"github.com/dkhomenko/spendbot/internal/response"
	"github.com/dkhomenko/spendbot/internal/router"
	"github.com/dkhomenko/spendbot/internal/services"
	"github.com/dkhomenko/spendbot/internal/store"
	fsstore "github.com/dkhomenko/spendbot/internal/store/firestore"
	pgstore "github.com/dkhomenko/spendbot/internal/store/postgres"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	var stores store.Stores
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		stores = store.Stores{
			Users:        fsstore.NewUserStore(bs.Firestore),
			Categories:   fsstore.NewCategoryStore(bs.Firestore),
			Transactions: fsstore.NewTransactionStore(bs.Firestore),
			Rates:        fsstore.NewRateStore(bs.Firestore),
		}
	default:
		stores = store.Stores{
			Users:        pgstore.NewUserStore(bs.Pool),
			Categories:   pgstore.NewCategoryStore(bs.Pool),
			Transactions: pgstore.NewTransactionStore(bs.Pool),
			Rates:        pgstore.NewRateStore(bs.Pool),
		}
	}

	// shared cache
	ttlCache, err := cache.NewTTL(time.Hour)
	exitOnError("cache init failed", err, bs.Log)

	// services
	fxClient := fx.NewClient(cfg.FxAPIURL, cfg.FxAPIKey)
	oracle := fx.NewOracle(stores.Rates, fxClient, ttlCache)
	userv := services.NewUserService(stores.Users, ttlCache, models.Currency(cfg.DefaultBaseCurrency))
	cserv := services.NewCategoryService(stores.Categories, stores.Transactions, ttlCache)
	tserv := services.NewTransactionService(stores.Transactions, cserv, oracle)
	rserv := services.NewReportService(stores.Transactions, stores.Categories)

	// chat dispatcher
	dispatcher := bot.NewHandler(userv, cserv, tserv, rserv, oracle, bot.NewStateStore())

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Bot = dispatcher
	deps.WebhookSecret = cfg.WebhookSecret
	deps.AllowedUserIDs = cfg.AllowedUserIDs

	// router
	r := router.NewRouter(deps)
	bs.Log.Info("listening", "port", cfg.Port, "backend", string(cfg.StoreBackend))
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
