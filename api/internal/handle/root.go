package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root is the liveness payload on GET /; no backend is involved.
func (h *Handle) Root(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":  "online",
		"message": "AI Food Nutrition API is running",
	})
}

func (h *Handle) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
