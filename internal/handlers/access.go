package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/mykafka"
	"github.com/pendoke/pendo-backend/internal/service/access"
)

type AccessHandler struct {
	DB       *gorm.DB
	Access   *access.Service
	Producer *mykafka.Producer
}

func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// RequestAccess stores a school's application with status pending.
func (h *AccessHandler) RequestAccess(c echo.Context) error {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		ContactPerson string `json:"contactPerson"`
		Phone         string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	request := models.AccessRequest{
		SchoolName:    req.Name,
		SchoolEmail:   req.Email,
		ContactPerson: req.ContactPerson,
		PhoneNumber:   req.Phone,
		Status:        models.RequestStatusPending,
	}
	if err := h.DB.Create(&request).Error; err != nil {
		c.Logger().Errorf("access request insert: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save request")
	}

	publish(c, h.Producer, "request_events", fmt.Sprint(request.ID), map[string]interface{}{
		"type":        "request_submitted",
		"requestID":   request.ID,
		"school_name": request.SchoolName,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Request submitted successfully",
		"data":    request,
	})
}

// VerifyAccess classifies a submitted code and issues a session token. Every
// failed lookup yields the same 401 body so callers cannot probe which table
// was consulted.
func (h *AccessHandler) VerifyAccess(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Access code is required")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Access code is required")
	}

	result, err := h.Access.Verify(req.Code)
	if err != nil {
		if errors.Is(err, access.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or inactive access code.")
		}
		c.Logger().Errorf("code verification: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Verification system error")
	}

	publish(c, h.Producer, "access_events", result.Role, map[string]interface{}{
		"type": "access_verified",
		"role": result.Role,
	})

	resp := echo.Map{
		"role":     result.Role,
		"redirect": result.Redirect,
		"token":    result.Token,
	}
	if result.User != nil {
		resp["user"] = result.User
	}
	if result.School != "" {
		resp["school"] = result.School
	}
	return c.JSON(http.StatusOK, resp)
}
