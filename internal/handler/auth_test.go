package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/utils"
)

// memStore is an in-memory credential store for handler tests.
type memStore struct {
	users  map[uint64]model.User
	nextID uint64
}

func newMemStore() *memStore { return &memStore{users: map[uint64]model.User{}, nextID: 1} }

func (m *memStore) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (uint64, error) {
	for _, u := range m.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	id := m.nextID
	m.nextID++
	now := time.Now().UTC()
	m.users[id] = model.User{
		ID: id, Email: email, PasswordHash: passwordHash,
		FirstName: firstName, LastName: lastName,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memStore) UpdatePasswordHash(ctx context.Context, id uint64, newHash string) (bool, error) {
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = newHash
	m.users[id] = u
	return true, nil
}

func (m *memStore) SetActive(ctx context.Context, id uint64, active bool) (bool, error) {
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.IsActive = active
	m.users[id] = u
	return true, nil
}

// newTestServer wires an Echo instance with the auth routes, backed
// by an in-memory store. Rate limiting and events are off, as they
// are when Redis and the broker are unavailable.
func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()

	store := newMemStore()
	issuer := utils.NewTokenIssuer("test-secret", time.Hour, 30*24*time.Hour)
	svc := service.NewAuthService(store, utils.NewPasswordHasher(4), issuer)
	h := NewAuthHandler(svc, false)

	e := echo.New()
	requireAccess := middleware.RequireToken(issuer, utils.KindAccess)
	requireRefresh := middleware.RequireToken(issuer, utils.KindRefresh)

	g := e.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.GET("/me", h.Me, requireAccess)
	g.POST("/change-password", h.ChangePassword, requireAccess)
	g.POST("/deactivate", h.Deactivate, requireAccess)
	g.POST("/logout", h.Logout, requireAccess)
	g.POST("/logout/refresh", h.Logout, requireRefresh)

	return e, store
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

const registerBody = `{"email":"a@b.com","password":"TestPassword123","first_name":"John","last_name":"Doe"}`

func TestRegister_Created(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "bearer", body["token_type"])
	require.EqualValues(t, 3600, body["expires_in"])
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	user := body["user"].(map[string]interface{})
	require.Equal(t, "a@b.com", user["email"])
	require.Equal(t, "John", user["first_name"])
	require.Equal(t, true, user["is_active"])
	require.Equal(t, false, user["is_verified"])
	_, leaked := user["password_hash"]
	require.False(t, leaked, "password hash must never appear in a response")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "user_exists", decodeBody(t, rec)["error"])
}

func TestRegister_ValidationDetails(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		`{"email":"a@b.com","password":"weak","first_name":"John","last_name":"Doe"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "validation_error", body["error"])
	details := body["details"].([]interface{})
	require.Equal(t, []interface{}{
		"password: must be at least 8 characters long",
		"password: must contain at least one uppercase letter",
		"password: must contain at least one digit",
	}, details)
}

func TestRegister_NonJSONContentType(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("email=a@b.com"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeBody(t, rec)["error"])
}

func TestRegister_MalformedJSON(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register", `{"email":`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "validation_error", body["error"])
	require.Equal(t, []interface{}{"request body is empty or malformed"}, body["details"])
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	missing := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"nonexistent@x.com","password":"anything"}`, "")
	wrong := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"wrongpass"}`, "")

	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	// Response shape must give no enumeration signal.
	require.Equal(t, missing.Body.String(), wrong.Body.String())
	require.Equal(t, "invalid_credentials", decodeBody(t, wrong)["error"])
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")

	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"TestPassword123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Login successful", body["message"])
	require.Equal(t, "bearer", body["token_type"])
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
}

func TestLogin_InactiveAccount(t *testing.T) {
	t.Parallel()

	e, store := newTestServer(t)
	doJSON(e, http.MethodPost, "/api/auth/register", registerBody, "")
	_, _ = store.SetActive(context.Background(), 1, false)

	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"TestPassword123"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "account_inactive", decodeBody(t, rec)["error"])
}

func TestRefresh_Flow(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	refreshTok := reg["refresh_token"].(string)
	accessTok := reg["access_token"].(string)

	rec := doJSON(e, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+refreshTok+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.EqualValues(t, 3600, body["expires_in"])
	_, rotated := body["refresh_token"]
	require.False(t, rotated, "refresh must not rotate the refresh token")

	// An access token is not accepted where a refresh token is required.
	rec = doJSON(e, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+accessTok+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeBody(t, rec)["error"])

	rec = doJSON(e, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"garbage"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_InactiveUser(t *testing.T) {
	t.Parallel()

	e, store := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	_, _ = store.SetActive(context.Background(), 1, false)

	rec := doJSON(e, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+reg["refresh_token"].(string)+`"}`, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "user_not_found", decodeBody(t, rec)["error"])
}

func TestMe(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	access := reg["access_token"].(string)
	refresh := reg["refresh_token"].(string)

	rec := doJSON(e, http.MethodGet, "/api/auth/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "a@b.com", body["email"])
	require.Equal(t, "Doe", body["last_name"])

	// Missing token.
	rec = doJSON(e, http.MethodGet, "/api/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "authorization_required", decodeBody(t, rec)["error"])

	// A refresh token must not open an access-protected route.
	rec = doJSON(e, http.MethodGet, "/api/auth/me", "", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeBody(t, rec)["error"])
}

func TestMe_ExpiredToken(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	expired := utils.NewTokenIssuer("test-secret", -time.Second, -time.Second)
	svc := service.NewAuthService(store, utils.NewPasswordHasher(4), expired)
	h := NewAuthHandler(svc, false)

	e := echo.New()
	e.GET("/api/auth/me", h.Me, middleware.RequireToken(expired, utils.KindAccess))

	tok, err := expired.IssueAccess(1)
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/auth/me", "", tok.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token_expired", decodeBody(t, rec)["error"])
}

func TestChangePassword_Flow(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	access := reg["access_token"].(string)

	// Wrong current password.
	rec := doJSON(e, http.MethodPost, "/api/auth/change-password",
		`{"current_password":"wrongpass","new_password":"NewPassword456"}`, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_current_password", decodeBody(t, rec)["error"])

	// Weak new password is rejected before the service runs.
	rec = doJSON(e, http.MethodPost, "/api/auth/change-password",
		`{"current_password":"TestPassword123","new_password":"weak"}`, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", decodeBody(t, rec)["error"])

	rec = doJSON(e, http.MethodPost, "/api/auth/change-password",
		`{"current_password":"TestPassword123","new_password":"NewPassword456"}`, access)
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer logs in; the new one does.
	rec = doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"TestPassword123"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"NewPassword456"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeactivate(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	access := reg["access_token"].(string)

	rec := doJSON(e, http.MethodPost, "/api/auth/deactivate", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"TestPassword123"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	reg := decodeBody(t, doJSON(e, http.MethodPost, "/api/auth/register", registerBody, ""))
	access := reg["access_token"].(string)
	refresh := reg["refresh_token"].(string)

	rec := doJSON(e, http.MethodPost, "/api/auth/logout", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Successfully logged out", decodeBody(t, rec)["message"])

	rec = doJSON(e, http.MethodPost, "/api/auth/logout/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	// No server-side revocation: the pair keeps validating until expiry.
	rec = doJSON(e, http.MethodGet, "/api/auth/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/logout", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
