package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/authgate/backend/internal/model"
	"github.com/authgate/backend/internal/service"
)

const (
	principalKey       = "auth_principal"
	apiKeyPrincipalKey = "api_key_principal"
	requestIDKey       = "request_id"
	requestIDHeader    = "X-Request-ID"
)

// RequestID attaches a correlation id to every request. Client-supplied ids
// are kept so callers can trace retries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// BearerAuth is the default request gate: it validates the Authorization
// bearer token and attaches the principal. A missing header and a failed
// verification are both 401; the body does not say which check failed.
func BearerAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "missing credentials"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "missing credentials"})
			c.Abort()
			return
		}

		principal, err := authService.VerifyAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) *model.Principal {
	if value, ok := c.Get(principalKey); ok {
		if principal, ok := value.(*model.Principal); ok {
			return principal
		}
	}
	return nil
}

// APIKeyAuth gates the partner path group on a static key header. Unknown,
// inactive and expired keys all answer the same 401.
func APIKeyAuth(apiKeys *service.APIKeyService, headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(headerName))
		if key == "" {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "missing credentials"})
			c.Abort()
			return
		}

		principal, err := apiKeys.Authenticate(c.Request.Context(), key)
		if err != nil {
			writeServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(apiKeyPrincipalKey, principal)
		c.Next()
	}
}

func GetAPIKeyPrincipal(c *gin.Context) *model.APIKeyPrincipal {
	if value, ok := c.Get(apiKeyPrincipalKey); ok {
		if principal, ok := value.(*model.APIKeyPrincipal); ok {
			return principal
		}
	}
	return nil
}

// RequireRole runs after BearerAuth and denies principals outside the
// allowed role set.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireRole(GetPrincipal(c), roles...); err != nil {
			writeServiceError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdult runs after BearerAuth and enforces the age policy against
// the user's stored birth date.
func RequireAdult(policy *service.AgePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.MustBeOver18(c.Request.Context(), GetPrincipal(c)); err != nil {
			writeServiceError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// writeServiceError maps the service sentinel errors to fixed status codes.
// Anything unexpected is a 500 carrying only the correlation id.
func writeServiceError(c *gin.Context, err error) {
	switch err {
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid input"})
	case service.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
	case service.ErrForbidden:
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "forbidden"})
	case service.ErrConflict:
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "already exists"})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:     "server error",
			RequestID: GetRequestID(c),
		})
	}
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
