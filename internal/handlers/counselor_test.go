package handlers

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pendoke/pendo-backend/internal/models"
)

var cnslPattern = regexp.MustCompile(`^CNSL-\d{4}$`)

func TestCreateCounselorGeneratesCode(t *testing.T) {
	db := initTestDB(t)
	h := &CounselorHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodPost, "/api/admin/counselors", map[string]any{
		"name":             "Jane Wanjiku",
		"email":            "jane@school.ke",
		"specialty":        "Adolescent anxiety",
		"experience_years": 6,
		"work_days":        "Mon-Fri",
		"work_hours":       "09:00-16:00",
		"assigned_school":  "Nairobi High",
	})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var counselor models.Counselor
	require.NoError(t, decodeInto(t, rec, &counselor))
	require.Regexp(t, cnslPattern, counselor.AccessCode)
	require.Equal(t, "Jane Wanjiku", counselor.Name)
	require.Equal(t, 6, counselor.ExperienceYears)
}

func TestCreateCounselorMissingFields(t *testing.T) {
	db := initTestDB(t)
	h := &CounselorHandler{DB: db}

	_, c := doJSONRequest(t, http.MethodPost, "/api/admin/counselors", map[string]any{
		"specialty": "Grief",
	})
	requireHTTPError(t, h.Create(c), http.StatusBadRequest)
}

func TestUpdateCounselorKeepsAccessCode(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.Counselor{Name: "Jane", Email: "jane@school.ke", AccessCode: "CNSL-4242"})
	h := &CounselorHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodPut, "/api/admin/counselors/1", map[string]any{
		"name":      "Jane Wanjiku",
		"email":     "jane@school.ke",
		"specialty": "Exam stress",
	}, "id", "1")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var counselor models.Counselor
	require.NoError(t, db.First(&counselor, 1).Error)
	require.Equal(t, "Jane Wanjiku", counselor.Name)
	require.Equal(t, "Exam stress", counselor.Specialty)
	require.Equal(t, "CNSL-4242", counselor.AccessCode, "update must never touch the code")
}

func TestUpdateCounselorNotFound(t *testing.T) {
	db := initTestDB(t)
	h := &CounselorHandler{DB: db}

	_, c := doJSONRequest(t, http.MethodPut, "/api/admin/counselors/7", map[string]any{
		"name": "x", "email": "x@y.ke",
	}, "id", "7")
	requireHTTPError(t, h.Update(c), http.StatusNotFound)
}

func TestDeleteCounselor(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.Counselor{Name: "Jane", Email: "jane@school.ke", AccessCode: "CNSL-4242"})
	h := &CounselorHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodDelete, "/api/admin/counselors/1", nil, "id", "1")
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.Counselor{}).Count(&count)
	require.Zero(t, count)
}

func TestListCounselorsNameOrdered(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.Counselor{Name: "Zawadi", Email: "z@s.ke", AccessCode: "CNSL-0001"})
	db.Create(&models.Counselor{Name: "Amani", Email: "a@s.ke", AccessCode: "CNSL-0002"})
	h := &CounselorHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/counselors", nil)
	require.NoError(t, h.List(c))

	var counselors []models.Counselor
	require.NoError(t, decodeInto(t, rec, &counselors))
	require.Len(t, counselors, 2)
	require.Equal(t, "Amani", counselors[0].Name)
	require.Equal(t, "Zawadi", counselors[1].Name)
}

// Without a search backend configured the query falls back to the store.
func TestSearchCounselorsFallback(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.Counselor{Name: "Jane Wanjiku", Email: "j@s.ke", Specialty: "Exam stress", AccessCode: "CNSL-0001"})
	db.Create(&models.Counselor{Name: "Peter Otieno", Email: "p@s.ke", Specialty: "Grief", AccessCode: "CNSL-0002"})
	h := &CounselorHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/counselors/search?q=stress", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.EqualValues(t, 1, body["total"])

	_, c = doJSONRequest(t, http.MethodGet, "/api/counselors/search", nil)
	requireHTTPError(t, h.Search(c), http.StatusBadRequest)
}
