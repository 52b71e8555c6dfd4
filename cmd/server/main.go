package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evanhutnik/mapnav/internal/cache"
	"github.com/evanhutnik/mapnav/internal/config"
	"github.com/evanhutnik/mapnav/internal/google"
	"github.com/evanhutnik/mapnav/internal/mapnav"
	"github.com/evanhutnik/mapnav/internal/osrm"
	"github.com/evanhutnik/mapnav/internal/positionstack"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var baseLogger *zap.Logger
	if cfg.IsDevelopment() {
		baseLogger, err = zap.NewDevelopment()
	} else {
		baseLogger, err = zap.NewProduction()
		gin.SetMode(gin.ReleaseMode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = baseLogger.Sync() }()
	log := baseLogger.Sugar()

	log.Infow("starting mapnav", "addr", cfg.HTTPAddr, "routing", cfg.RoutingProvider)

	gp, err := google.New(cfg.MapsAPIKey)
	if err != nil {
		log.Fatalw("failed to create google maps client", "error", err)
	}

	var geocoder cache.Geocoder = gp
	var router mapnav.Router = gp
	geocoderName := "google"
	if cfg.RoutingProvider == config.ProviderOSRM {
		geocoderName = "positionstack"
		geocoder = positionstack.New(
			positionstack.ApiKeyOption(cfg.PositionstackKey),
			positionstack.BaseUrlOption(cfg.PositionstackURL),
		)
		router = osrm.New(osrm.BaseUrlOption(cfg.OSRMURL))
	}

	if !cfg.DisableRedis {
		rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer func() { _ = rc.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(pingCtx).Err(); err != nil {
			log.Warnw("redis unreachable, geocode cache disabled", "address", cfg.RedisAddress, "error", err)
		} else {
			geocoder = cache.NewGeocodeCache(geocoder, geocoderName, rc, cfg.GeocodeCacheTTL, log.Named("cache"))
		}
		cancel()
	}

	svc := mapnav.New(
		mapnav.GeocoderOption(geocoder),
		mapnav.RouterOption(router),
		mapnav.PlacesOption(gp),
		mapnav.ApiKeyOption(cfg.MapsAPIKey),
		mapnav.TimeoutOption(cfg.ProviderTimeout),
		mapnav.LoggerOption(log),
	)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: svc.Handler(mapnav.HandlerConfig{
			CORSOrigins:    cfg.CORSOrigins,
			NavigatePerMin: cfg.NavigatePerMin,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("HTTP server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down mapnav...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server forced shutdown", "error", err)
	}

	log.Info("mapnav stopped")
}
