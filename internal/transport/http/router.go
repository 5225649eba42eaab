package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pendoke/pendo-backend/internal/handlers"
	auth "github.com/pendoke/pendo-backend/internal/middleware/auth"
	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/relay"
)

type Deps struct {
	AccessHandler    *handlers.AccessHandler
	AdminHandler     *handlers.AdminHandler
	CounselorHandler *handlers.CounselorHandler
	TriageHandler    *handlers.TriageHandler
	ChatHandler      *handlers.ChatHandler
	WSHandler        *relay.WSHandler
	Auth             *auth.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "timestamp": time.Now().UTC()})
	}
	e.GET("/health", health)

	api := e.Group("/api")
	api.GET("/health", health)

	// public
	api.POST("/request-access", d.AccessHandler.RequestAccess)
	api.POST("/verify-access", d.AccessHandler.VerifyAccess)
	api.GET("/counselors", d.CounselorHandler.List)
	api.GET("/counselors/search", d.CounselorHandler.Search)

	// admin
	admin := api.Group("/admin", d.Auth.Authenticate, d.Auth.RequireRoles(models.RoleAdmin))
	admin.GET("/requests", d.AdminHandler.ListRequests)
	admin.POST("/approve/:id", d.AdminHandler.ApproveRequest)
	admin.DELETE("/request/:id", d.AdminHandler.RejectRequest)
	admin.GET("/schools/approved", d.AdminHandler.ApprovedSchools)
	admin.GET("/conversations", d.AdminHandler.ListConversations)
	admin.GET("/counselors", d.CounselorHandler.List)
	admin.POST("/counselors", d.CounselorHandler.Create)
	admin.PUT("/counselors/:id", d.CounselorHandler.Update)
	admin.DELETE("/counselors/:id", d.CounselorHandler.Delete)

	// student
	student := api.Group("", d.Auth.Authenticate, d.Auth.RequireRoles(models.RoleStudent))
	student.POST("/chat/gemini", d.ChatHandler.Gemini)
	student.POST("/triage", d.TriageHandler.Save)

	// any authenticated role
	authed := api.Group("", d.Auth.Authenticate)
	authed.POST("/chat/save", d.ChatHandler.SaveMessage)
	authed.POST("/chat/sessions", d.ChatHandler.CreateSession)
	authed.GET("/chat/sessions/:id/messages", d.ChatHandler.SessionMessages)
	authed.POST("/start-session", d.ChatHandler.StartSession)
	authed.POST("/send-meeting-link", d.ChatHandler.SendMeetingLink)

	// websocket relay; token is checked inside (query param)
	e.GET("/ws/chat/:session", d.WSHandler.Serve)
}
