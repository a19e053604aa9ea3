package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authgate/backend/internal/model"
	"github.com/authgate/backend/internal/service"
)

// AdminHandler covers the administrative surface: API-key lifecycle and
// user role changes. All routes sit behind BearerAuth + RequireRole(Admin).
type AdminHandler struct {
	auth    *service.AuthService
	apiKeys *service.APIKeyService
}

func NewAdminHandler(auth *service.AuthService, apiKeys *service.APIKeyService) *AdminHandler {
	return &AdminHandler{auth: auth, apiKeys: apiKeys}
}

// CreateAPIKey godoc
// @Summary Create an API key
// @Description The raw key value appears in this response only.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateAPIKeyRequest true "Key attributes"
// @Success 201 {object} model.CreatedAPIKeyResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/admin/apikeys [post]
func (h *AdminHandler) CreateAPIKey(c *gin.Context) {
	var req model.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "expires_at must be RFC 3339"})
			return
		}
		expiresAt = &parsed
	}

	key, err := h.apiKeys.Create(c.Request.Context(), req.Name, req.Owner, req.Scopes, expiresAt)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreatedAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            key.KeyValue,
	})
}

// ListAPIKeys godoc
// @Summary List API keys
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.APIKeyResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/admin/apikeys [get]
func (h *AdminHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.apiKeys.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]model.APIKeyResponse, 0, len(keys))
	for i := range keys {
		out = append(out, toAPIKeyResponse(&keys[i]))
	}
	c.JSON(http.StatusOK, out)
}

// DeactivateAPIKey godoc
// @Summary Deactivate an API key
// @Description The record is kept; only the active flag flips.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Key id"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/admin/apikeys/{id} [delete]
func (h *AdminHandler) DeactivateAPIKey(c *gin.Context) {
	keyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid key id"})
		return
	}

	if err := h.apiKeys.Deactivate(c.Request.Context(), keyID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "deactivated"})
}

// UpdateUserRole godoc
// @Summary Change a user's role
// @Description Takes effect on the user's next token refresh.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param request body model.UpdateRoleRequest true "New role"
// @Success 200 {object} model.StatusResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid user id"})
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.auth.ChangeRole(c.Request.Context(), userID, req.Role); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "updated"})
}

func toAPIKeyResponse(key *model.APIKey) model.APIKeyResponse {
	return model.APIKeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		Owner:      key.Owner,
		Scopes:     key.Scopes,
		CreatedAt:  key.CreatedAt,
		ExpiresAt:  key.ExpiresAt,
		Active:     key.Active,
		LastUsedAt: key.LastUsedAt,
	}
}
