package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/model"
)

// errorBody is the error envelope shared by every failure response:
// a machine-readable code, a human-readable message and, for
// validation failures, the ordered list of field problems.
type errorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func errJSON(c echo.Context, status int, code, msg string, details ...string) error {
	return c.JSON(status, errorBody{Error: code, Message: msg, Details: details})
}

// userPayload is the public projection of a user record. The
// password hash has no field here, so it cannot leak.
type userPayload struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toUserPayload(u model.User) userPayload {
	return userPayload{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// sessionPayload is the success body for register and login: the
// user plus a bearer token pair.
type sessionPayload struct {
	Message      string      `json:"message"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	User         userPayload `json:"user"`
}

// bindJSON rejects non-JSON content types and malformed bodies
// before any schema validation runs, each with its own error code.
// It returns true when decoding succeeded; otherwise the error
// response has already been written.
func bindJSON(c echo.Context, dst interface{}) (bool, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if mt, _, err := mime.ParseMediaType(ct); err != nil || !strings.HasPrefix(mt, echo.MIMEApplicationJSON) {
		return false, errJSON(c, http.StatusBadRequest, "invalid_request", "Request must be JSON")
	}
	if err := json.NewDecoder(c.Request().Body).Decode(dst); err != nil {
		return false, errJSON(c, http.StatusBadRequest, "validation_error", "Invalid JSON",
			"request body is empty or malformed")
	}
	return true, nil
}
