package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/utils"
)

// ContextUserID is the context key under which the authenticated
// user's id is stored for downstream handlers.
const ContextUserID = "user_id"

// RequireToken returns an Echo middleware that validates a Bearer
// token of the given kind and injects the token's subject into the
// request context. Protected routes take kind=access; the
// refresh-token logout route takes kind=refresh. Handlers read the
// id via c.Get(middleware.ContextUserID).(uint64).
func RequireToken(issuer *utils.TokenIssuer, kind utils.TokenKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "authorization_required",
					"message": "Authorization token is required",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := issuer.Validate(raw, kind)
			if err != nil {
				code := "invalid_token"
				msg := "Invalid token"
				if err == utils.ErrTokenExpired {
					code = "token_expired"
					msg = "Token has expired"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": code, "message": msg})
			}

			c.Set(ContextUserID, userID)
			return next(c)
		}
	}
}
