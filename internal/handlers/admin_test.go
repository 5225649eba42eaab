package handlers

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pendoke/pendo-backend/internal/models"
)

var nrbPattern = regexp.MustCompile(`^NRB-\d{4}$`)

func TestListRequestsOnlyPending(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.AccessRequest{SchoolName: "A", SchoolEmail: "a@a.ke", Status: models.RequestStatusPending})
	db.Create(&models.AccessRequest{SchoolName: "B", SchoolEmail: "b@b.ke", Status: models.RequestStatusApproved, AccessCode: "NRB-1111"})
	h := &AdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/admin/requests", nil)
	require.NoError(t, h.ListRequests(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var requests []models.AccessRequest
	require.NoError(t, decodeInto(t, rec, &requests))
	require.Len(t, requests, 1)
	require.Equal(t, "A", requests[0].SchoolName)
}

func TestApproveUnknownRequest(t *testing.T) {
	db := initTestDB(t)
	h := &AdminHandler{DB: db}

	_, c := doJSONRequest(t, http.MethodPost, "/api/admin/approve/99", nil, "id", "99")
	requireHTTPError(t, h.ApproveRequest(c), http.StatusNotFound)
}

// Approval is not idempotent: a second approve must succeed, issue a
// different code and overwrite the first, orphaning it.
func TestApproveTwiceOverwritesCode(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.AccessRequest{SchoolName: "A", SchoolEmail: "a@a.ke", Status: models.RequestStatusPending})
	h := &AdminHandler{DB: db}

	codes := make([]string, 0, 2)
	for len(codes) < 2 {
		rec, c := doJSONRequest(t, http.MethodPost, "/api/admin/approve/1", nil, "id", "1")
		require.NoError(t, h.ApproveRequest(c))
		require.Equal(t, http.StatusOK, rec.Code)

		code, _ := decodeBody(t, rec)["accessCode"].(string)
		require.Regexp(t, nrbPattern, code)
		if len(codes) == 1 && code == codes[0] {
			// 1-in-9000 suffix collision; draw again
			continue
		}
		codes = append(codes, code)
	}
	require.NotEqual(t, codes[0], codes[1])

	var request models.AccessRequest
	require.NoError(t, db.First(&request, 1).Error)
	require.Equal(t, models.RequestStatusApproved, request.Status)
	require.Equal(t, codes[1], request.AccessCode, "second code must win")
}

func TestRejectDeletesRequest(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.AccessRequest{SchoolName: "A", SchoolEmail: "a@a.ke", Status: models.RequestStatusPending})
	h := &AdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodDelete, "/api/admin/request/1", nil, "id", "1")
	require.NoError(t, h.RejectRequest(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.AccessRequest{}).Count(&count)
	require.Zero(t, count)
}

func TestApprovedSchools(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.AccessRequest{SchoolName: "A", SchoolEmail: "a@a.ke", Status: models.RequestStatusPending})
	db.Create(&models.AccessRequest{SchoolName: "B", SchoolEmail: "b@b.ke", Status: models.RequestStatusApproved, AccessCode: "NRB-2222"})
	h := &AdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/admin/schools/approved", nil)
	require.NoError(t, h.ApprovedSchools(c))

	var schools []models.AccessRequest
	require.NoError(t, decodeInto(t, rec, &schools))
	require.Len(t, schools, 1)
	require.Equal(t, "B", schools[0].SchoolName)
}

func TestListConversations(t *testing.T) {
	db := initTestDB(t)
	db.Create(&models.ChatSession{ID: "s-1", StudentName: "Nairobi High", Status: "active"})
	h := &AdminHandler{DB: db}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/admin/conversations", nil)
	require.NoError(t, h.ListConversations(c))

	var sessions []models.ChatSession
	require.NoError(t, decodeInto(t, rec, &sessions))
	require.Len(t, sessions, 1)
	require.Equal(t, "s-1", sessions[0].ID)
}
