package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/companion"
	auth "github.com/pendoke/pendo-backend/internal/middleware/auth"
	"github.com/pendoke/pendo-backend/internal/models"
)

type ChatHandler struct {
	DB        *gorm.DB
	Companion *companion.Service
}

// Gemini runs one AI companion turn. The escalation sentinel is stripped
// from the text and surfaced as a flag.
func (h *ChatHandler) Gemini(c echo.Context) error {
	var req struct {
		Message string           `json:"message"`
		History []companion.Turn `json:"history"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chat payload")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message is required")
	}

	reply, err := h.Companion.Chat(c.Request().Context(), req.Message, req.History)
	if err != nil {
		c.Logger().Errorf("Gemini API: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "AI processing failed")
	}
	return c.JSON(http.StatusOK, reply)
}

// CreateSession opens a chat session keyed by a generated id. The caller's
// display name is stored as an attribute of the session, never as its key.
func (h *ChatHandler) CreateSession(c echo.Context) error {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid session payload")
	}

	claims := auth.GetClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
	}
	session := models.ChatSession{
		ID:          uuid.NewString(),
		StudentName: claims.Name,
		Topic:       req.Topic,
		Status:      "active",
	}
	if err := h.DB.Create(&session).Error; err != nil {
		c.Logger().Errorf("session create: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}
	return c.JSON(http.StatusCreated, echo.Map{"session": session})
}

// SessionMessages returns the persisted history, oldest first. Only
// messages that survived the fire-and-forget save path appear here.
func (h *ChatHandler) SessionMessages(c echo.Context) error {
	sessionID := c.Param("id")

	var messages []models.ChatMessage
	err := h.DB.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		c.Logger().Errorf("fetching messages: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch messages")
	}
	return c.JSON(http.StatusOK, messages)
}

// SaveMessage persists a relayed message. Deliberately fire-and-forget: a
// storage failure is logged and the caller still gets success, so the
// real-time path never stalls on durability.
func (h *ChatHandler) SaveMessage(c echo.Context) error {
	var req struct {
		Room     string `json:"room"`
		Text     string `json:"text"`
		SenderID string `json:"senderId"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid chat payload")
	}

	message := models.ChatMessage{
		SessionID:  req.Room,
		SenderID:   req.SenderID,
		SenderRole: req.Role,
		Content:    req.Text,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		c.Logger().Errorf("chat save: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// StartSession is kept for client compatibility; session tracking lives in
// the database and relay flow.
func (h *ChatHandler) StartSession(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// SendMeetingLink stores a video-meeting notification for the counselor
// dashboard. The code is not delivered by this system.
func (h *ChatHandler) SendMeetingLink(c echo.Context) error {
	var req struct {
		StudentEmail   string `json:"studentEmail"`
		CounselorID    string `json:"counselorId"`
		CounselorEmail string `json:"counselorEmail"`
		CounselorName  string `json:"counselorName"`
		Date           string `json:"date"`
		Time           string `json:"time"`
		MeetLink       string `json:"meetLink"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid meeting payload")
	}

	recipient := req.CounselorID
	if recipient == "" {
		recipient = req.CounselorEmail
	}
	payload, _ := json.Marshal(echo.Map{
		"counselorName": req.CounselorName,
		"studentEmail":  req.StudentEmail,
		"date":          req.Date,
		"time":          req.Time,
		"meetLink":      req.MeetLink,
	})

	notification := models.Notification{
		Type:          "video_meeting",
		RecipientRole: recipient,
		Payload:       string(payload),
	}
	if err := h.DB.Create(&notification).Error; err != nil {
		c.Logger().Errorf("notification insert: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
