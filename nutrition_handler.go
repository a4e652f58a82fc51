package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lg/nutrition-progress-api/nutrition"
)

// postNutritionTargets computes targets for a profile supplied in the body.
// POST /nutrition/targets. Body: { "profile": {...}, "currentWeightKg": 80 }.
func (h *Handler) postNutritionTargets(c *gin.Context) {
	var body targetsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidInput(c, "invalid request body: "+err.Error())
		return
	}
	// ComputeTargets does not validate the target weight
	if body.Profile.TargetWeightKG <= 0 {
		h.invalidInput(c, "targetWeightKg must be > 0")
		return
	}

	resp, err := h.computeTargets(body.Profile, body.CurrentWeightKG)
	if err != nil {
		h.invalidInput(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getUserNutrition computes targets from the stored profile and the latest
// stored weight sample. 404 if either is missing.
// GET /users/:userID/nutrition.
func (h *Handler) getUserNutrition(c *gin.Context) {
	userID := c.Param("userID")

	profile, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err, "profile not found", "failed to fetch profile")
		return
	}
	latest, err := h.store.LatestWeight(c.Request.Context(), userID)
	if err != nil {
		storeError(c, err, "no weight samples recorded", "failed to fetch latest weight")
		return
	}

	resp, err := h.computeTargets(profile.toProfile(), latest.WeightKG)
	if err != nil {
		// stored rows are validated on write, so this means the table was edited by hand
		log.Warnf("[getUserNutrition] stored data for %s rejected: %v", userID, err)
		h.invalidInput(c, err.Error())
		return
	}
	resp.CurrentWeight = &latest
	c.JSON(http.StatusOK, resp)
}

// computeTargets runs the calculator and attaches the derived macro views.
// Only *nutrition.InvalidInputError is expected back.
func (h *Handler) computeTargets(p nutrition.Profile, currentWeightKG float64) (targetsResponse, error) {
	targets, err := nutrition.ComputeTargets(p, currentWeightKG)
	if err != nil {
		if !errors.Is(err, nutrition.ErrInvalidInput) {
			log.Errorf("[computeTargets] unexpected error: %v", err)
		}
		return targetsResponse{}, err
	}
	h.metrics.CounterTargets.WithLabelValues(string(targets.Goal)).Inc()

	protein, carb, fat := nutrition.MacroPercentages(targets)
	return targetsResponse{
		Targets:          targets,
		MacroPercentages: macroPercentages{ProteinPct: protein, CarbPct: carb, FatPct: fat},
		MacroCalories:    targets.MacroCalories(),
	}, nil
}
