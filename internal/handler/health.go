package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authgate/backend/internal/model"
)

// Healthz is the anonymous liveness endpoint.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
}
