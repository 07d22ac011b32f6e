package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quantbridge/webtrader/internal"
	"github.com/quantbridge/webtrader/internal/api"
	"github.com/quantbridge/webtrader/internal/app"
	"github.com/quantbridge/webtrader/internal/auth"
	"github.com/quantbridge/webtrader/internal/config"
	"github.com/quantbridge/webtrader/internal/engine"
	"github.com/quantbridge/webtrader/internal/hub"
	"github.com/quantbridge/webtrader/internal/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/time/rate"
)

func main() {
	log.Info(fmt.Sprintf("Web trader %s is running", internal.GatewayVersionRevision))
	config.LoadConfig()
	app.InitMetrics()

	creds, err := auth.NewCredentials(config.Config.Username, config.Config.Password)
	if err != nil {
		log.Fatalf("failed to prepare credentials: %v", err)
	}
	tokens := auth.NewTokenService(config.Config.SecretKey, time.Duration(config.Config.TokenTTL)*time.Minute)

	extractor, err := utils.NewRealIPExtractor(config.Config.TrustedProxyRanges)
	if err != nil {
		log.Warnf("failed to create realIPExtractor: %v, using defaults", err)
		extractor, _ = utils.NewRealIPExtractor([]string{})
	}

	broadcaster := hub.NewHub(
		config.Config.EventBufferSize,
		config.Config.SendBufferSize,
		time.Duration(config.Config.HeartbeatInterval)*time.Second,
	)
	utils.RunWithRecovery(func() { broadcaster.Run(context.Background()) })

	backend := engine.NewRPCClient(time.Duration(config.Config.RequestTimeout) * time.Second)
	backend.SetCallback(broadcaster.Publish)
	backend.SubscribeTopic("")
	if err := backend.Start(config.Config.ReqAddress, config.Config.SubAddress); err != nil {
		log.Fatalf("failed to start backend rpc client: %v", err)
	}
	defer backend.Stop()

	healthManager := app.NewHealthManager()
	utils.RunWithRecovery(func() { healthManager.StartHealthMonitoring(backend) })

	mux := http.NewServeMux()
	mux.Handle("/health", http.HandlerFunc(healthManager.HealthHandler))
	mux.Handle("/ready", http.HandlerFunc(healthManager.HealthHandler))
	mux.Handle("/version", http.HandlerFunc(app.VersionHandler))
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", config.Config.MetricsPort), mux))
	}()

	e := echo.New()
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		Skipper:           nil,
		DisableStackAll:   true,
		DisablePrintStack: false,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() != "/token"
		},
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(config.Config.RPSLimit)),
	}))

	limiter := api.NewConnectionsLimiter(config.Config.ConnectionsLimit, extractor)
	h := api.NewHandler(backend, broadcaster, creds, tokens, limiter, extractor)
	api.RegisterHandlers(e, h)

	var existedPaths []string
	for _, r := range e.Routes() {
		existedPaths = append(existedPaths, r.Path)
	}
	p := prometheus.NewPrometheus("http", func(c echo.Context) bool {
		return !slices.Contains(existedPaths, c.Path())
	})
	e.Use(p.HandlerFunc)

	log.Fatal(e.Start(fmt.Sprintf("%s:%d", config.Config.Host, config.Config.Port)))
}
