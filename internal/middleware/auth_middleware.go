package middleware

import (
	"github.com/gin-gonic/gin"

	appauth "github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/session"
)

const identityKey = "identity"

// AuthMiddleware resolves the request actor and guards protected routes
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Identity loads the actor from the session cookie, or from a bearer token when
// there is no session. Anonymous requests pass through; a bad token is rejected.
func (m *AuthMiddleware) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := session.GetIdentity(c)
		if !ok {
			if header := c.GetHeader("Authorization"); header != "" {
				token, err := auth.ExtractBearerToken(header)
				if err != nil {
					HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token format"))
					return
				}
				identity, err = m.authService.Authenticate(token)
				if err != nil {
					HandleAPIError(c, err)
					return
				}
				ok = true
			}
		}
		if ok {
			SetIdentity(c, identity)
		}
		c.Next()
	}
}

// RequireLogin rejects anonymous requests with 401 and queues a login reminder.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			if err := session.SetFlash(c, session.FlashWarning, "Please log in."); err != nil {
				logger.Warn().Err(err).Msg("Failed to queue login flash")
			}
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Authentication required"))
			return
		}
		c.Next()
	}
}

// RequireAdmin lets only admins through. It implies RequireLogin.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrUnauthorized, "Authentication required"))
			return
		}
		if !identity.IsAdmin() {
			logger.Warn().Int64("userID", identity.ID).Str("path", c.Request.URL.Path).Msg("Admin route denied")
			HandleAPIError(c, apperrors.NewForbiddenError("Admin access required"))
			return
		}
		c.Next()
	}
}

// SetIdentity stores the actor on the gin context and on the request context.
func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(identityKey, identity)
	c.Request = c.Request.WithContext(appauth.WithIdentity(c.Request.Context(), identity))
}

// CurrentIdentity returns the actor resolved by Identity.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok && identity.ID > 0
}
