package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authgate/backend/internal/model"
)

// AdultContent godoc
// @Summary Age-restricted sample resource
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PingResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/content/adult [get]
func AdultContent(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "age-restricted content"})
}
