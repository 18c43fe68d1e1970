package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundlicense-backend/api"
	"soundlicense-backend/pkg/config"
	"soundlicense-backend/pkg/covers"
	"soundlicense-backend/pkg/database"
	"soundlicense-backend/pkg/mailer"
	"soundlicense-backend/pkg/storage"
)

func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	db, err := database.New(database.StoreConfig{
		PostgresDSN: cfg.PostgresDSN,
		UseMemoryDB: cfg.UseMemoryDB,
		Debug:       cfg.Debug,
	})
	if err != nil {
		fmt.Printf("❌ Database error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	st, err := storage.New(cfg)
	if err != nil {
		fmt.Printf("❌ Storage error: %v\n", err)
		os.Exit(1)
	}

	sender, err := mailer.NewSMTPSender(cfg)
	if err != nil {
		fmt.Printf("❌ Mailer error: %v\n", err)
		os.Exit(1)
	}
	queue := mailer.NewChannelQueue(sender, 256)
	defer queue.Close()

	pexels := covers.NewPexelsClient(cfg.PexelsAPIKey, cfg.PexelsBaseURL)
	resolver := covers.NewResolver(pexels, st.URL)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		DB:       db,
		Storage:  st,
		Queue:    queue,
		Resolver: resolver,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("🚀 soundlicense backend listening on :%s (%s)\n", cfg.Port, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("❌ Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Printf("🛑 Shutting down...\n")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("[error] graceful shutdown failed: %v\n", err)
	}
}
