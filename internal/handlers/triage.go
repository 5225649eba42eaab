package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/mykafka"
)

// Risk banding thresholds for the depression score.
const (
	lowRiskMax      = 9
	moderateRiskMax = 19
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

type TriageHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// RiskLevelFor bands a total depression score.
func RiskLevelFor(score int) string {
	switch {
	case score <= lowRiskMax:
		return RiskLow
	case score <= moderateRiskMax:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// Save appends one assessment record. Records are never updated or deleted
// here. The risk level is derived from the score when the client omits it.
func (h *TriageHandler) Save(c echo.Context) error {
	var req struct {
		StudentID   string `json:"studentId"`
		Score       int    `json:"score"`
		RiskLevel   string `json:"riskLevel"`
		HasCritical bool   `json:"hasCritical"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid triage payload")
	}

	riskLevel := req.RiskLevel
	if riskLevel == "" {
		riskLevel = RiskLevelFor(req.Score)
	}

	record := models.TriageRecord{
		StudentID:          req.StudentID,
		ScoreDepression:    req.Score,
		RiskLevel:          riskLevel,
		FlaggedForSelfHarm: req.HasCritical,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		c.Logger().Errorf("triage save: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save triage")
	}

	publish(c, h.Producer, "triage_events", record.StudentID, map[string]interface{}{
		"type":       "triage_recorded",
		"risk_level": record.RiskLevel,
		"flagged":    record.FlaggedForSelfHarm,
	})

	return c.JSON(http.StatusCreated, record)
}
