package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/nutrition-progress-api/progress"
)

// postProgressTrend filters the supplied samples to a window and estimates
// the weekly trend over what remains.
// POST /progress/trend. Body: { "samples": [...], "window": "MONTH", "now"?: RFC3339 }.
func (h *Handler) postProgressTrend(c *gin.Context) {
	var body trendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidInput(c, "invalid request body: "+err.Error())
		return
	}

	window, ok := h.parseWindow(c, body.Window)
	if !ok {
		return
	}
	for _, s := range body.Samples {
		if s.WeightKG <= 0 {
			h.invalidInput(c, "weightKg must be > 0 in every sample")
			return
		}
	}

	now := h.now()
	if body.Now != nil {
		now = *body.Now
	}

	filtered := progress.FilterByWindow(body.Samples, window, now)
	trend := progress.ComputeTrend(filtered)
	h.metrics.CounterTrends.WithLabelValues(string(trend.Category), string(window)).Inc()

	c.JSON(http.StatusOK, trendResponse{
		Window:          window,
		FilteredSamples: filtered,
		Points:          progress.ToChartPoints(filtered),
		Trend:           trend,
	})
}

// getUserProgress returns the chart series and trend for the user's stored
// history. GET /users/:userID/progress?window=MONTH. Defaults to MONTH.
// A user with no samples gets an empty series and INSUFFICIENT_DATA.
func (h *Handler) getUserProgress(c *gin.Context) {
	userID := c.Param("userID")

	window, ok := h.parseWindow(c, c.Query("window"))
	if !ok {
		return
	}

	rows, err := h.store.ListWeights(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err, "weights not found", "failed to fetch weight history")
		return
	}

	report := progress.Analyze(toSamples(rows), window, h.now())
	h.metrics.CounterTrends.WithLabelValues(string(report.Trend.Category), string(window)).Inc()

	c.JSON(http.StatusOK, report)
}

// parseWindow resolves an optional window label, responding 400 on unknown
// labels.
func (h *Handler) parseWindow(c *gin.Context, label string) (progress.Window, bool) {
	if label == "" {
		return progress.DefaultWindow, true
	}
	window, err := progress.ParseWindow(label)
	if err != nil {
		h.invalidInput(c, err.Error())
		return "", false
	}
	return window, true
}
