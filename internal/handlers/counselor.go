package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/accesscode"
	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/mykafka"
	"github.com/pendoke/pendo-backend/internal/service/search"
	"github.com/pendoke/pendo-backend/internal/util"
)

type CounselorHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	// ES is optional; with no client configured the search route degrades
	// to a DB LIKE query and index writes are skipped.
	ES    *elasticsearch.Client
	Index string
}

type counselorRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Specialty       string `json:"specialty"`
	ExperienceYears int    `json:"experience_years"`
	WorkDays        string `json:"work_days"`
	WorkHours       string `json:"work_hours"`
	AssignedSchool  string `json:"assigned_school"`
}

// List serves both the public directory and the admin view, name-ordered.
func (h *CounselorHandler) List(c echo.Context) error {
	var counselors []models.Counselor
	if err := h.DB.Order("name ASC").Find(&counselors).Error; err != nil {
		c.Logger().Errorf("fetching counselors: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch counselors")
	}
	return c.JSON(http.StatusOK, counselors)
}

// Create generates the counselor's CNSL- access code. The code is assigned
// here and never changed afterwards.
func (h *CounselorHandler) Create(c echo.Context) error {
	var req counselorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid counselor payload")
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	counselor := models.Counselor{
		Name:            req.Name,
		Email:           req.Email,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		WorkDays:        req.WorkDays,
		WorkHours:       req.WorkHours,
		AssignedSchool:  req.AssignedSchool,
		AccessCode:      accesscode.Generate(accesscode.PrefixCounselor),
	}
	if err := h.DB.Create(&counselor).Error; err != nil {
		c.Logger().Errorf("creating counselor: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create counselor")
	}

	h.reindex(c, counselor)
	publish(c, h.Producer, "counselor_events", fmt.Sprint(counselor.ID), map[string]interface{}{
		"type":        "counselor_created",
		"counselorID": counselor.ID,
		"name":        counselor.Name,
	})

	return c.JSON(http.StatusCreated, counselor)
}

func (h *CounselorHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid counselor id")
	}

	var req counselorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid counselor payload")
	}

	var counselor models.Counselor
	if err := h.DB.First(&counselor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Counselor not found")
		}
		c.Logger().Errorf("updating counselor: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update counselor")
	}

	counselor.Name = req.Name
	counselor.Email = req.Email
	counselor.Specialty = req.Specialty
	counselor.ExperienceYears = req.ExperienceYears
	counselor.WorkDays = req.WorkDays
	counselor.WorkHours = req.WorkHours
	counselor.AssignedSchool = req.AssignedSchool
	// AccessCode deliberately untouched

	if err := h.DB.Save(&counselor).Error; err != nil {
		c.Logger().Errorf("updating counselor: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update counselor")
	}

	h.reindex(c, counselor)
	return c.JSON(http.StatusOK, counselor)
}

func (h *CounselorHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid counselor id")
	}

	if err := h.DB.Delete(&models.Counselor{}, id).Error; err != nil {
		c.Logger().Errorf("deleting counselor: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete counselor")
	}

	if h.ES != nil {
		if err := search.Delete(c.Request().Context(), h.ES, h.Index, uint(id)); err != nil {
			c.Logger().Errorf("search index delete: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Counselor deleted successfully",
	})
}

func (h *CounselorHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	if h.ES == nil {
		var counselors []models.Counselor
		pattern := "%" + q + "%"
		err := h.DB.
			Where("name LIKE ? OR specialty LIKE ? OR assigned_school LIKE ?", pattern, pattern, pattern).
			Order("name ASC").
			Offset(from).Limit(limit).
			Find(&counselors).Error
		if err != nil {
			c.Logger().Errorf("counselor search: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search counselors")
		}
		return c.JSON(http.StatusOK, echo.Map{"total": len(counselors), "counselors": counselors})
	}

	total, counselors, err := search.Counselors(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		c.Logger().Errorf("counselor search: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search counselors")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "counselors": counselors})
}

// reindex mirrors the record into the search index; failures are logged,
// the write path does not depend on the index.
func (h *CounselorHandler) reindex(c echo.Context, counselor models.Counselor) {
	if h.ES == nil {
		return
	}
	if err := search.Index(c.Request().Context(), h.ES, h.Index, counselor); err != nil {
		c.Logger().Errorf("search index write: %v", err)
	}
}
