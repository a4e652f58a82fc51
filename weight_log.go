package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Accepted range for a logged body weight.
const (
	minLoggedWeightKG = 30.0
	maxLoggedWeightKG = 300.0
)

// getWeights returns every weight sample for the user, oldest first.
// GET /users/:userID/weights. Returns an empty array (not null) if none exist.
func (h *Handler) getWeights(c *gin.Context) {
	rows, err := h.store.ListWeights(c.Request.Context(), c.Param("userID"))
	if err != nil {
		storeError(c, err, "weights not found", "failed to fetch weight log")
		return
	}
	// Ensure empty array (not null) in JSON
	if rows == nil {
		rows = []weightSampleRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// addWeight records a new weight sample.
// POST /users/:userID/weights. Body: { "weightKg": 78.4, "recordedAt"?: RFC3339 }.
// Several samples per day are allowed; each is kept with its own timestamp.
func (h *Handler) addWeight(c *gin.Context) {
	userID := c.Param("userID")

	var body addWeightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidInput(c, "invalid request body: "+err.Error())
		return
	}
	if body.WeightKG < minLoggedWeightKG || body.WeightKG > maxLoggedWeightKG {
		h.invalidInput(c, fmt.Sprintf("weightKg must be between %g and %g", minLoggedWeightKG, maxLoggedWeightKG))
		return
	}

	recordedAt := h.now()
	if body.RecordedAt != nil {
		recordedAt = *body.RecordedAt
	}

	row, err := h.store.AddWeight(c.Request.Context(), userID, body.WeightKG, recordedAt.UTC())
	if err != nil {
		storeError(c, err, "user not found", "failed to record weight")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// deleteWeight removes a weight sample by ID.
// DELETE /users/:userID/weights/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeight(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.invalidInput(c, "id must be an integer")
		return
	}

	if err := h.store.DeleteWeight(c.Request.Context(), c.Param("userID"), id); err != nil {
		storeError(c, err, "weight entry not found", "failed to delete weight entry")
		return
	}
	c.Status(http.StatusNoContent)
}
