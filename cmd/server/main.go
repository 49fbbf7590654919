package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avdeenko/orderdesk/internal/catalog"
	"github.com/avdeenko/orderdesk/internal/config"
	"github.com/avdeenko/orderdesk/internal/db"
	"github.com/avdeenko/orderdesk/internal/events"
	"github.com/avdeenko/orderdesk/internal/httpserver"
	"github.com/avdeenko/orderdesk/internal/logging"
	"github.com/avdeenko/orderdesk/internal/middleware"
	"github.com/avdeenko/orderdesk/internal/models"
	"github.com/avdeenko/orderdesk/internal/repo"
	"github.com/avdeenko/orderdesk/internal/search"
	"github.com/avdeenko/orderdesk/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	database, err := db.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if err := database.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: database}

	// An empty store still answers GET /products sensibly: it starts from
	// the same seed set the entry engine falls back to.
	if err := gormRepo.SeedProducts(context.Background(), seedProducts()); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	var orderSearch *search.OrderSearch
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("es_unavailable", "reason", "order search falls back to db", "error", err)
		} else {
			orderSearch = &search.OrderSearch{ES: esClient, Index: search.OrderIndex}
		}
	}

	svc := &service.OrderService{Repo: gormRepo}
	if producer != nil {
		svc.Producer = producer
	}
	if orderSearch != nil {
		svc.Indexer = orderSearch
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Repo: gormRepo},
		OrderHandler:   &httpserver.OrderHTTP{Svc: svc, Repo: gormRepo, Search: orderSearch},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

func seedProducts() []models.Product {
	out := make([]models.Product, 0, 4)
	for _, p := range catalog.Seed() {
		out = append(out, models.Product{Name: p.Name, Price: p.Price, Stock: p.Stock})
	}
	return out
}
