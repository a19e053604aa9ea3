package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/authgate/backend/internal/model"
)

// PartnerHandler serves the API-key-gated path group used by
// service-to-service callers.
type PartnerHandler struct{}

func NewPartnerHandler() *PartnerHandler {
	return &PartnerHandler{}
}

// Ping godoc
// @Summary Echo the authenticated API-key identity
// @Tags partner
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.PartnerIdentityResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /partner/ping [get]
func (h *PartnerHandler) Ping(c *gin.Context) {
	principal := GetAPIKeyPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.PartnerIdentityResponse{
		Message: "pong",
		Owner:   principal.Owner,
		KeyName: principal.Name,
		Scopes:  principal.Scopes,
	})
}

// ReportEvent godoc
// @Summary Accept a partner event
// @Tags partner
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 202 {object} model.EventAcceptedResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /partner/events [post]
func (h *PartnerHandler) ReportEvent(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	c.JSON(http.StatusAccepted, model.EventAcceptedResponse{
		Status:  "accepted",
		EventID: uuid.NewString(),
	})
}
