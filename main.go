package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"lg/nutrition-progress-api/internal/config"
	"lg/nutrition-progress-api/internal/logging"
	"lg/nutrition-progress-api/internal/metrics"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *env)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
	})

	if *env == "prod" || *env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager(cfg.MetricsNamespace, cfg.MetricsSubsystem, reg)

	// The stateless engine routes work without a database.
	var store profileStore
	if cfg.DBURL != "" {
		pool, err := getDBPool(ctx, cfg.DBURL)
		if err != nil {
			log.Fatalf("database: %s", err)
		}
		defer pool.Close()
		reg.MustRegister(pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": "nutrition"}))
		store = newPGStore(pool)
		log.Infoln("DB pool ready")
	} else {
		log.Warnln("DB_URL not set, stored-data routes disabled")
	}

	h := newHandler(store, metricsManager)
	router := newRouter(h, reg, cfg.TrustedProxies)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	<-ctx.Done()
	log.Infoln("shutting down")

	timeout := time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %s", err)
	}
	log.Infoln("server stopped")
}
