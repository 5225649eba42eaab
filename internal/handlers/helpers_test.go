package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/service/access"
)

var testSecret = []byte("test-secret")

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Admin{},
		&models.Counselor{},
		&models.AccessRequest{},
		&models.TriageRecord{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newAccessService(db *gorm.DB) *access.Service {
	return &access.Service{DB: db, JWTSecret: testSecret}
}

func doJSONRequest(t *testing.T, method, path string, payload any, params ...string) (*httptest.ResponseRecorder, echo.Context) {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	e := echo.New()
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return rec, c
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) error {
	t.Helper()
	return json.Unmarshal(rec.Body.Bytes(), out)
}

func requireHTTPError(t *testing.T, err error, code int) {
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
