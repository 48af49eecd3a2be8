package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	TokenParser
	Login(username, password string) (string, time.Time, error)
}

type AdminHandler struct {
	auth Authenticator
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAdminHandler(auth Authenticator) *AdminHandler {
	return &AdminHandler{auth: auth}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
}

func (h *AdminHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt.UTC().Format(time.RFC3339)})
}

// Middleware guards the admin group.
func (h *AdminHandler) Middleware() gin.HandlerFunc {
	return AdminAuth(h.auth)
}
