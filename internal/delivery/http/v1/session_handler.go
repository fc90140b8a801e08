package v1

import (
	"net/http"

	"alumni-prep-backend/internal/delivery/http/response"
	"alumni-prep-backend/internal/usecase"
	"alumni-prep-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// SessionStore hands out the per-client workflow pairs.
type SessionStore interface {
	Create() *usecase.Session
	Get(id string) (*usecase.Session, bool)
}

const sessionKey = "session"

type SessionHandler struct {
	sessions SessionStore
}

type SessionResponse struct {
	ID string `json:"id"`
}

// NewSessionHandler registers POST /sessions and returns the middleware that
// resolves :id for the nested routes.
func NewSessionHandler(public *gin.RouterGroup, sessions SessionStore) gin.HandlerFunc {
	handler := &SessionHandler{sessions: sessions}
	public.POST("/sessions", handler.Create)
	return handler.resolve
}

// Create godoc
// @Summary      Start a session
// @Description  Creates a signup form and a practice list generator for one client.
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  response.Response{data=SessionResponse}
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.sessions.Create()
	response.Success(c, http.StatusCreated, "Session created", SessionResponse{ID: s.ID})
}

func (h *SessionHandler) resolve(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.Error(apperror.NotFound("Session not found or expired"))
		c.Abort()
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func currentSession(c *gin.Context) *usecase.Session {
	return c.MustGet(sessionKey).(*usecase.Session)
}
