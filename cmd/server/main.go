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
	"github.com/redis/go-redis/v9"

	"github.com/pendoke/pendo-backend/internal/companion"
	"github.com/pendoke/pendo-backend/internal/config"
	"github.com/pendoke/pendo-backend/internal/es"
	"github.com/pendoke/pendo-backend/internal/handlers"
	auth "github.com/pendoke/pendo-backend/internal/middleware/auth"
	"github.com/pendoke/pendo-backend/internal/mykafka"
	"github.com/pendoke/pendo-backend/internal/relay"
	"github.com/pendoke/pendo-backend/internal/service/access"
	httpserver "github.com/pendoke/pendo-backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is required")
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{"access_events", "request_events", "counselor_events", "triage_events"}
		prod, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			log.Fatal(err)
		}
	}

	var rdb *redis.Client
	if configuration.REDIS_ADDRESS != "" {
		rdb = redis.NewClient(&redis.Options{Addr: configuration.REDIS_ADDRESS})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
	}

	var completer companion.Completer = companion.Unavailable{}
	var gemini *companion.GeminiCompleter
	if configuration.GEMINI_API_KEY != "" {
		gemini, err = companion.NewGeminiCompleter(context.Background(), configuration.GEMINI_API_KEY, configuration.GEMINI_MODEL)
		if err != nil {
			log.Fatal(err)
		}
		completer = gemini
	} else {
		log.Println("GEMINI_API_KEY not set, AI companion is disabled")
	}

	counselorHandler := &handlers.CounselorHandler{DB: db, Producer: prod, Index: "counselors"}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		counselorHandler.ES = esClient
	}

	hub := relay.NewHub(rdb)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Logger())

	deps := httpserver.Deps{
		AccessHandler: &handlers.AccessHandler{
			DB:       db,
			Producer: prod,
			Access: &access.Service{
				DB:        db,
				JWTSecret: jwtSecret,
				AdminCode: configuration.ADMIN_CODE,
			},
		},
		AdminHandler:     &handlers.AdminHandler{DB: db, Producer: prod},
		CounselorHandler: counselorHandler,
		TriageHandler:    &handlers.TriageHandler{DB: db, Producer: prod},
		ChatHandler:      &handlers.ChatHandler{DB: db, Companion: companion.NewService(completer)},
		WSHandler:        relay.NewWSHandler(hub, db, jwtSecret),
		Auth:             &auth.Middleware{JWTSecret: jwtSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}
	if gemini != nil {
		if err := gemini.Close(); err != nil {
			log.Printf("gemini close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
