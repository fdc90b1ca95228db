package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/queue"
	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/utils"
	"github.com/iliyamo/auth-service/internal/validation"
)

// AuthHandler bundles dependencies for the auth endpoints. It owns
// no state of its own; every request is atomic from the caller's
// perspective.
type AuthHandler struct {
	Svc           *service.AuthService
	EventsEnabled bool
}

func NewAuthHandler(svc *service.AuthService, eventsEnabled bool) *AuthHandler {
	return &AuthHandler{Svc: svc, EventsEnabled: eventsEnabled}
}

const dbTimeout = 5 * time.Second

// Register creates a user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req validation.RegisterRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if errs := req.Validate(); !errs.OK() {
		return errJSON(c, http.StatusBadRequest, "validation_error", "Validation failed", errs...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, pair, err := h.Svc.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if err == service.ErrEmailExists {
			return errJSON(c, http.StatusConflict, "user_exists", "User with this email already exists")
		}
		c.Logger().Errorf("register: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred during registration")
	}

	h.publish(queue.Event{Type: queue.EventUserRegistered, UserID: u.ID, Email: u.Email})

	return c.JSON(http.StatusCreated, sessionPayload{
		Message:      "User registered successfully",
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Svc.Tokens().AccessTTL().Seconds()),
		User:         toUserPayload(u),
	})
}

// Login verifies credentials and returns a new token pair. The same
// invalid_credentials response covers unknown emails and wrong
// passwords so account existence cannot be probed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if errs := req.Validate(); !errs.OK() {
		return errJSON(c, http.StatusBadRequest, "validation_error", "Validation failed", errs...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCredentials:
			return errJSON(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		case service.ErrAccountInactive:
			return errJSON(c, http.StatusForbidden, "account_inactive", "Account is deactivated")
		}
		c.Logger().Errorf("login: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred during login")
	}

	pair, err := h.Svc.IssueTokens(u.ID)
	if err != nil {
		c.Logger().Errorf("login: issue tokens: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred during login")
	}

	return c.JSON(http.StatusOK, sessionPayload{
		Message:      "Login successful",
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.Svc.Tokens().AccessTTL().Seconds()),
		User:         toUserPayload(u),
	})
}

// Refresh exchanges a refresh token for a new access token. The
// refresh token is not rotated; clients keep using it until expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req validation.RefreshRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if errs := req.Validate(); !errs.OK() {
		return errJSON(c, http.StatusBadRequest, "validation_error", "Validation failed", errs...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	access, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch err {
		case utils.ErrTokenExpired:
			return errJSON(c, http.StatusUnauthorized, "token_expired", "Token has expired")
		case utils.ErrTokenMalformed, utils.ErrWrongTokenKind:
			return errJSON(c, http.StatusUnauthorized, "invalid_token", "Invalid token")
		case service.ErrUserNotFound:
			return errJSON(c, http.StatusNotFound, "user_not_found", "User not found or inactive")
		}
		c.Logger().Errorf("refresh: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "Token refresh failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Token refreshed successfully",
		"access_token": access.Token,
		"token_type":   "bearer",
		"expires_in":   int64(h.Svc.Tokens().AccessTTL().Seconds()),
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		if err == service.ErrUserNotFound {
			return errJSON(c, http.StatusNotFound, "user_not_found", "User not found")
		}
		c.Logger().Errorf("me: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred")
	}
	return c.JSON(http.StatusOK, toUserPayload(u))
}

// ChangePassword verifies the current password and stores a hash of
// the new one. The new password passed schema validation already;
// a wrong current password is reported as a 400, not a 401, because
// the caller is authenticated.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(uint64)

	var req validation.ChangePasswordRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if errs := req.Validate(); !errs.OK() {
		return errJSON(c, http.StatusBadRequest, "validation_error", "Validation failed", errs...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	changed, err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		c.Logger().Errorf("change-password: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred while changing password")
	}
	if !changed {
		return errJSON(c, http.StatusBadRequest, "invalid_current_password", "Current password is incorrect")
	}

	h.publish(queue.Event{Type: queue.EventPasswordChanged, UserID: userID})

	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// Deactivate turns the authenticated account off. Already-issued
// tokens stay valid until expiry; login and refresh reject the
// account from now on.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	userID := c.Get(middleware.ContextUserID).(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ok, err := h.Svc.Deactivate(ctx, userID)
	if err != nil {
		c.Logger().Errorf("deactivate: %v", err)
		return errJSON(c, http.StatusInternalServerError, "internal_error", "An error occurred")
	}
	if !ok {
		return errJSON(c, http.StatusNotFound, "user_not_found", "User not found")
	}

	h.publish(queue.Event{Type: queue.EventUserDeactivated, UserID: userID})

	return c.JSON(http.StatusOK, echo.Map{"message": "Account deactivated"})
}

// Logout acknowledges the request; tokens are self-contained and
// there is no server-side revocation, so the client simply discards
// its pair. The route is guarded so that only a valid token holder
// gets the acknowledgement.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

// publish sends an auth event to the broker without blocking the
// request; failures are logged inside the publisher and ignored.
func (h *AuthHandler) publish(ev queue.Event) {
	if !h.EventsEnabled {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = queue.PublishAuthEvent(ctx, ev)
	}()
}
