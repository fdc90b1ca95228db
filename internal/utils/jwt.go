package utils // package utils provides helper types for password hashing and token issuing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access tokens from refresh tokens. A token
// of one kind is never accepted where the other is required.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Validation failures reported by TokenIssuer.Validate. Handlers map
// all three to HTTP 401; the distinction matters for logging and tests.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// Claims is the JWT claim set carried by both token kinds. The
// subject holds the user ID in decimal form; Kind holds the token
// kind discriminator. The HS256 signature covers the whole set.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// SignedToken bundles a serialized JWT with its expiry so handlers
// can report expires_in without re-parsing the token.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenIssuer mints and validates signed, expiring tokens bound to a
// user identity. Issuance and validation are pure computations with
// no shared state, so a single issuer is safe under any concurrency.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessTTL reports the configured access-token lifetime; responses
// expose it as expires_in seconds.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// IssueAccess signs a short-lived access token for the user.
func (i *TokenIssuer) IssueAccess(userID uint64) (SignedToken, error) {
	return i.issue(userID, KindAccess, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the user.
func (i *TokenIssuer) IssueRefresh(userID uint64) (SignedToken, error) {
	return i.issue(userID, KindRefresh, i.refreshTTL)
}

func (i *TokenIssuer) issue(userID uint64, kind TokenKind, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Kind: string(kind),
	})
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// Validate parses a raw token, checks its signature and expiry, and
// confirms the kind discriminator matches. On success it returns the
// user ID embedded as the subject claim.
func (i *TokenIssuer) Validate(raw string, expected TokenKind) (uint64, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}
	if !tok.Valid {
		return 0, ErrTokenMalformed
	}
	if claims.Kind == "" {
		return 0, ErrTokenMalformed
	}
	if claims.Kind != string(expected) {
		return 0, ErrWrongTokenKind
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrTokenMalformed
	}
	return userID, nil
}
