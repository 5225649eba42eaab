package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/accesscode"
	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/mykafka"
	"github.com/pendoke/pendo-backend/internal/util"
)

// AdminHandler owns the access-request lifecycle: pending requests are
// approved (code assigned) or deleted outright. Both transitions are
// terminal and neither keeps an audit trail.
type AdminHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *AdminHandler) ListRequests(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var requests []models.AccessRequest
	err := h.DB.
		Where("status = ?", models.RequestStatusPending).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error
	if err != nil {
		c.Logger().Errorf("fetching requests: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch requests")
	}
	return c.JSON(http.StatusOK, requests)
}

// ApproveRequest assigns a fresh NRB- code and marks the request approved in
// a single update. Re-approving issues another code and overwrites the
// first; the caller distributes the returned code manually.
func (h *AdminHandler) ApproveRequest(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request id")
	}

	var request models.AccessRequest
	if err := h.DB.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Request not found")
		}
		c.Logger().Errorf("approval flow: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process approval")
	}

	code := accesscode.Generate(accesscode.PrefixSchool)
	err = h.DB.Model(&request).Updates(map[string]interface{}{
		"status":      models.RequestStatusApproved,
		"access_code": code,
	}).Error
	if err != nil {
		c.Logger().Errorf("approval flow: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process approval")
	}

	publish(c, h.Producer, "request_events", fmt.Sprint(request.ID), map[string]interface{}{
		"type":        "request_approved",
		"requestID":   request.ID,
		"school_name": request.SchoolName,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Approved",
		"accessCode": code,
	})
}

// RejectRequest deletes the row. Irreversible; no tombstone is kept.
func (h *AdminHandler) RejectRequest(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request id")
	}

	if err := h.DB.Delete(&models.AccessRequest{}, id).Error; err != nil {
		c.Logger().Errorf("rejection flow: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to reject request")
	}

	publish(c, h.Producer, "request_events", fmt.Sprint(id), map[string]interface{}{
		"type":      "request_rejected",
		"requestID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Request rejected and deleted successfully",
	})
}

func (h *AdminHandler) ApprovedSchools(c echo.Context) error {
	var schools []models.AccessRequest
	err := h.DB.
		Where("status = ?", models.RequestStatusApproved).
		Order("created_at DESC").
		Find(&schools).Error
	if err != nil {
		c.Logger().Errorf("fetching approved schools: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch approved schools")
	}
	return c.JSON(http.StatusOK, schools)
}

func (h *AdminHandler) ListConversations(c echo.Context) error {
	var sessions []models.ChatSession
	err := h.DB.
		Preload("Counselor").
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		c.Logger().Errorf("fetching conversations: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch conversations")
	}
	return c.JSON(http.StatusOK, sessions)
}
