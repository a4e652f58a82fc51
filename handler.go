package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"lg/nutrition-progress-api/internal/metrics"
	"lg/nutrition-progress-api/internal/middleware"
)

// Handler holds shared dependencies for all route handlers. store is nil when
// no database is configured; the stored-data routes are then not registered.
type Handler struct {
	store   profileStore
	metrics *metrics.Manager
	now     func() time.Time // overridable for tests
}

func newHandler(store profileStore, m *metrics.Manager) *Handler {
	return &Handler{store: store, metrics: m, now: time.Now}
}

// invalidInputCode is the error code for every rejected request body.
const invalidInputCode = "INVALID_INPUT"

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// invalidInput responds 400 {"error": "INVALID_INPUT", "detail": ...} and
// counts the rejection per route.
func (h *Handler) invalidInput(c *gin.Context, detail string) {
	h.metrics.CounterInvalidInput.WithLabelValues(c.FullPath()).Inc()
	c.JSON(http.StatusBadRequest, gin.H{"error": invalidInputCode, "detail": detail})
}

// storeError maps a store failure to 404 or 500 and logs the latter.
func storeError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, notFoundMsg)
		return
	}
	log.WithField("request_id", c.GetString(middleware.RequestIDKey)).Errorf("%s: %v", failMsg, err)
	apiError(c, http.StatusInternalServerError, failMsg)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with middleware, the /metrics endpoint
// and all API routes.
func newRouter(h *Handler, gatherer prometheus.Gatherer, trustedProxies []string) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Warnf("invalid trusted proxies %v: %v", trustedProxies, err)
	}
	router.Use(
		middleware.PanicRecovery(h.metrics),
		middleware.RequestID(),
		middleware.LogRequest(),
		middleware.RequestMetrics(h.metrics),
	)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", h.health)

	// Stateless engine routes
	router.POST("/nutrition/targets", h.postNutritionTargets)
	router.POST("/progress/trend", h.postProgressTrend)

	if h.store == nil {
		return
	}

	// Stored-data routes
	users := router.Group("/users/:userID")
	users.GET("/profile", h.getProfile)
	users.PUT("/profile", h.putProfile)
	users.GET("/weights", h.getWeights)
	users.POST("/weights", h.addWeight)
	users.DELETE("/weights/:id", h.deleteWeight)
	users.GET("/nutrition", h.getUserNutrition)
	users.GET("/progress", h.getUserProgress)
}

// health reports liveness, and database reachability when one is configured.
// GET /health.
func (h *Handler) health(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		log.Warnf("health: database ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
