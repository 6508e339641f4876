package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmonco/mpute/internal/middleware"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Index describes the service and whether the caller is signed in
func (h *HomeHandler) Index(c *gin.Context) {
	session := middleware.GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"name":          "mpute",
		"description":   "Public market for compute.",
		"authenticated": session != nil,
	})
}
