package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/nutrition-progress-api/nutrition"
)

// getProfile returns the stored profile for a user.
// GET /users/:userID/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.store.GetProfile(c.Request.Context(), c.Param("userID"))
	if err != nil {
		storeError(c, err, "profile not found", "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// putProfile creates or replaces the user's profile.
// PUT /users/:userID/profile. Sex and activity level are normalized before
// saving; an omitted initialWeightKg keeps the stored one.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.Param("userID")

	var body putProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.invalidInput(c, "invalid request body: "+err.Error())
		return
	}
	if problem := validateProfileRequest(body); problem != "" {
		h.invalidInput(c, problem)
		return
	}

	saved, err := h.store.UpsertProfile(c.Request.Context(), profileRow{
		UserID:          userID,
		Sex:             string(nutrition.ParseSex(body.Sex)),
		AgeYears:        body.AgeYears,
		HeightCM:        body.HeightCM,
		ActivityLevel:   string(nutrition.ParseActivityLevel(body.ActivityLevel)),
		TargetWeightKG:  body.TargetWeightKG,
		InitialWeightKG: body.InitialWeightKG,
	})
	if err != nil {
		storeError(c, err, "profile not found", "failed to save profile")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// validateProfileRequest returns a message for the first invalid field, or "".
// Unknown activity levels are rejected on write; the calculator alone would
// fall back to MODERATE.
func validateProfileRequest(body putProfileRequest) string {
	if !nutrition.KnownSex(body.Sex) {
		return "sex must be one of: MALE, FEMALE"
	}
	if body.AgeYears < 1 || body.AgeYears > 130 {
		return "ageYears must be between 1 and 130"
	}
	if body.HeightCM <= 0 {
		return "heightCm must be > 0"
	}
	if body.TargetWeightKG <= 0 {
		return "targetWeightKg must be > 0"
	}
	if body.InitialWeightKG != nil && *body.InitialWeightKG <= 0 {
		return "initialWeightKg must be > 0"
	}
	if !nutrition.ParseActivityLevel(body.ActivityLevel).Known() {
		return fmt.Sprintf("activityLevel must be one of: %s, %s, %s, %s, %s",
			nutrition.Sedentary, nutrition.Light, nutrition.Moderate, nutrition.Active, nutrition.VeryActive)
	}
	return ""
}
