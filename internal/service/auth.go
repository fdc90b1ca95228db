// Package service contains the auth use cases. AuthService
// orchestrates the credential store, the password hasher and the
// token issuer; it is stateless between calls and returns domain
// outcomes, leaving HTTP status mapping to the handler layer.
package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// Domain outcomes surfaced to handlers.
var (
	// ErrEmailExists re-exports the store-level conflict so handlers
	// depend on the service package alone.
	ErrEmailExists = repository.ErrEmailExists
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is reported only after a successful password
	// match against a deactivated account.
	ErrAccountInactive = errors.New("account inactive")
	// ErrUserNotFound means the user id no longer resolves to an
	// active account.
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the credential-store surface the service depends on.
// *repository.UserRepo satisfies it; tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, firstName, lastName string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePasswordHash(ctx context.Context, id uint64, newHash string) (bool, error)
	SetActive(ctx context.Context, id uint64, active bool) (bool, error)
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// AuthService implements the register/authenticate/refresh/
// change-password use cases. All collaborators are injected once at
// process start.
type AuthService struct {
	users  UserStore
	hasher utils.PasswordHasher
	tokens *utils.TokenIssuer
}

func NewAuthService(users UserStore, hasher utils.PasswordHasher, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Tokens exposes the issuer so handlers can report expires_in.
func (s *AuthService) Tokens() *utils.TokenIssuer { return s.tokens }

// Register hashes the password, inserts the user and issues a token
// pair. Duplicate emails surface as repository.ErrEmailExists; the
// uniqueness decision is made by the store at insert time, not by a
// prior read, so concurrent registrations cannot both succeed.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (model.User, TokenPair, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	id, err := s.users.Create(ctx, email, hash, firstName, lastName)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	pair, err := s.IssueTokens(id)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Authenticate verifies credentials. Unknown email and wrong
// password both yield ErrInvalidCredentials; an inactive account is
// reported only when the password matched.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return model.User{}, ErrAccountInactive
	}
	return u, nil
}

// IssueTokens mints a fresh access+refresh pair for the user.
func (s *AuthService) IssueTokens(userID uint64) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh validates a refresh token and issues a new access token.
// The refresh token itself is not rotated. Token-level failures pass
// through as utils.ErrToken* values; a subject that no longer
// resolves to an active user yields ErrUserNotFound.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (utils.SignedToken, error) {
	userID, err := s.tokens.Validate(refreshToken, utils.KindRefresh)
	if err != nil {
		return utils.SignedToken{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.SignedToken{}, ErrUserNotFound
		}
		return utils.SignedToken{}, err
	}
	if !u.IsActive {
		return utils.SignedToken{}, ErrUserNotFound
	}
	return s.tokens.IssueAccess(u.ID)
}

// ChangePassword verifies the current password and persists a hash
// of the new one. Returns false when the user is unknown or the
// current password does not verify.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, currentPassword, newPassword string) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !s.hasher.Verify(u.PasswordHash, currentPassword) {
		return false, nil
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

// Profile loads the user for an authenticated subject.
func (s *AuthService) Profile(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// Deactivate flips is_active off for the user. Existing tokens keep
// validating until they expire; login and refresh start failing
// immediately.
func (s *AuthService) Deactivate(ctx context.Context, userID uint64) (bool, error) {
	return s.users.SetActive(ctx, userID, false)
}
