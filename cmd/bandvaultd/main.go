// Command bandvaultd is the long-running daemon: it serves the HTTP
// transport over the Collection Store, optionally watches the music root
// for changes, and runs a periodic rescan on a cron schedule.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"bandvault/internal/collection"
	"bandvault/internal/config"
	"bandvault/internal/httpapi"
	"bandvault/internal/logging"
	"bandvault/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	col := collection.New(collection.Options{
		MusicRoot: cfg.MusicRootPath,
		CacheTTL:  cfg.CacheTTL(),
		Logger:    log,
	})
	defer col.Close()

	ctx, cancelScan := context.WithTimeout(context.Background(), 10*time.Minute)
	if _, errv := col.Scan(ctx); errv != nil {
		log.WithError(errv).Warn("initial scan failed; serving with an empty or stale index")
	}
	cancelScan()

	scheduler := cron.New()
	scheduleSpec := fmt.Sprintf("@every %s", cfg.ScanInterval)
	if _, err := scheduler.AddFunc(scheduleSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, errv := col.Scan(ctx); errv != nil {
			log.WithError(errv).Warn("scheduled scan failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule periodic scan")
	}
	scheduler.Start()
	defer scheduler.Stop()

	var watcher *watch.Watcher
	if cfg.WatchEnabled {
		watcher, err = watch.New(cfg.MusicRootPath, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, errv := col.Scan(ctx); errv != nil {
				log.WithError(errv).Warn("watch-triggered scan failed")
			}
		}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to start filesystem watcher")
		}
		watchCtx, cancelWatch := context.WithCancel(context.Background())
		defer cancelWatch()
		if err := watcher.Start(watchCtx); err != nil {
			log.WithError(err).Fatal("failed to watch music root")
		}
		defer watcher.Close()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.New(col).Register(router)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("bandvaultd starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shut down")
	}
	log.Info("shutdown complete")
}
