package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Bhardwaj-Devesh/project-enux/internal/analyzer"
	"github.com/Bhardwaj-Devesh/project-enux/internal/app"
	"github.com/Bhardwaj-Devesh/project-enux/internal/blob"
	"github.com/Bhardwaj-Devesh/project-enux/internal/config"
	"github.com/Bhardwaj-Devesh/project-enux/internal/fork"
	"github.com/Bhardwaj-Devesh/project-enux/internal/search"
	"github.com/Bhardwaj-Devesh/project-enux/internal/store"
	"github.com/Bhardwaj-Devesh/project-enux/internal/tasks"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	blobs, err := blob.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("minio connection failed: %v", err)
	}
	forkCoordinator := fork.NewCoordinator(dataStore, blobs)

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	var searchService *search.Service
	if meiliClient != nil {
		searchService = search.NewService(meiliClient)
	}

	var textAnalyzer *analyzer.Service
	if strings.TrimSpace(cfg.AnalyzerURL) != "" {
		textAnalyzer = analyzer.NewService(analyzer.NewHTTPClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout))
	} else {
		log.Printf("analyzer not configured, using fallback annotations")
		textAnalyzer = analyzer.NewService(nil)
	}

	redisClient, err := tasks.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	queue := tasks.NewQueue(redisClient)
	publisher := tasks.NewPublisher(redisClient)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	worker := tasks.NewWorker(redisClient)
	worker.Handle(tasks.KindRefresh, tasks.NewRefreshHandler(dataStore, searchService))
	go worker.Run(workerCtx)

	service := app.NewService(dataStore, forkCoordinator, textAnalyzer, searchService, queue, publisher, []byte(cfg.JWTSecret))
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Enux API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
