package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/MadridBabajev/ShoppingCart/internal/config"
	"github.com/MadridBabajev/ShoppingCart/internal/es"
	"github.com/MadridBabajev/ShoppingCart/internal/events"
	"github.com/MadridBabajev/ShoppingCart/internal/httpserver"
	"github.com/MadridBabajev/ShoppingCart/internal/logging"
	loggingmw "github.com/MadridBabajev/ShoppingCart/internal/middleware/logging"
	"github.com/MadridBabajev/ShoppingCart/internal/repo"
	authsvc "github.com/MadridBabajev/ShoppingCart/internal/service/auth"
	cartsvc "github.com/MadridBabajev/ShoppingCart/internal/service/cart"
	catalogsvc "github.com/MadridBabajev/ShoppingCart/internal/service/catalog"
	"github.com/MadridBabajev/ShoppingCart/internal/tokens"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	tokenManager := &tokens.Manager{
		Secret:     []byte(cfg.JWT_SECRET),
		Issuer:     cfg.JWT_ISSUER,
		Audience:   cfg.JWT_AUDIENCE,
		DefaultTTL: time.Duration(cfg.JWT_TTL_SEC) * time.Second,
	}

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{cfg.KAFKA_ADDRESS})
	}

	var searchHandler *httpserver.SearchHTTP
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		searchHandler = &httpserver.SearchHTTP{ES: esClient, Index: "items"}
	}

	r := repo.New(db)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authsvc.New(r, tokenManager), Producer: producer},
		CartHandler:    &httpserver.CartHTTP{Svc: cartsvc.New(r), Producer: producer},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogsvc.New(r)},
		SearchHandler:  searchHandler,
		Tokens:         tokenManager,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
