package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Valid(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{
		Email:     "a@b.com",
		Password:  "TestPassword123",
		FirstName: "John",
		LastName:  "Doe",
	}
	require.Empty(t, req.Validate())
}

func TestRegisterRequest_WeakPassword(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{
		Email:     "a@b.com",
		Password:  "weak",
		FirstName: "John",
		LastName:  "Doe",
	}
	errs := req.Validate()
	require.Equal(t, Errors{
		"password: must be at least 8 characters long",
		"password: must contain at least one uppercase letter",
		"password: must contain at least one digit",
	}, errs)
}

func TestRegisterRequest_LengthCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// "Aa1éééé" is 7 characters but 11 UTF-8 bytes; it must still
	// fail the 8-character minimum.
	req := RegisterRequest{
		Email:     "a@b.com",
		Password:  "Aa1éééé",
		FirstName: "John",
		LastName:  "Doe",
	}
	require.Equal(t, Errors{
		"password: must be at least 8 characters long",
	}, req.Validate())

	// Eight characters pass regardless of byte width.
	req = RegisterRequest{
		Email:     "a@b.com",
		Password:  "Aa1ééééé",
		FirstName: "John",
		LastName:  "Doe",
	}
	require.Empty(t, req.Validate())
}

func TestRegisterRequest_NameLengthCountsCharacters(t *testing.T) {
	t.Parallel()

	// "é" is one character (two bytes) and must fail the 2-character
	// minimum; "éé" must pass.
	req := RegisterRequest{
		Email:     "a@b.com",
		Password:  "TestPassword123",
		FirstName: "é",
		LastName:  "éé",
	}
	require.Equal(t, Errors{
		"first_name: must be at least 2 characters long",
	}, req.Validate())
}

func TestRegisterRequest_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{Email: "not-an-email", Password: "short", FirstName: " J ", LastName: ""}
	errs := req.Validate()
	require.False(t, errs.OK())

	joined := strings.Join(errs, "\n")
	require.Contains(t, joined, "email: ")
	require.Contains(t, joined, "password: ")
	require.Contains(t, joined, "first_name: must be at least 2 characters long")
	require.Contains(t, joined, "last_name: must be at least 2 characters long")
}

func TestRegisterRequest_TrimsNamesAndEmail(t *testing.T) {
	t.Parallel()

	req := RegisterRequest{
		Email:     "  a@b.com  ",
		Password:  "TestPassword123",
		FirstName: "  John ",
		LastName:  " Doe  ",
	}
	require.Empty(t, req.Validate())
	require.Equal(t, "a@b.com", req.Email)
	require.Equal(t, "John", req.FirstName)
	require.Equal(t, "Doe", req.LastName)
}

func TestEmailValidation(t *testing.T) {
	t.Parallel()

	bad := []string{"", "plain", "a@", "@b.com", "a b@c.com", "Jane <a@b.com>"}
	for _, e := range bad {
		req := LoginRequest{Email: e, Password: "x"}
		require.False(t, req.Validate().OK(), "email %q should fail", e)
	}
	good := []string{"a@b.com", "first.last@example.co.uk", "user+tag@domain.io"}
	for _, e := range good {
		req := LoginRequest{Email: e, Password: "x"}
		require.True(t, req.Validate().OK(), "email %q should pass", e)
	}
}

func TestChangePasswordRequest(t *testing.T) {
	t.Parallel()

	req := ChangePasswordRequest{CurrentPassword: "OldPassword1", NewPassword: "NewPassword1"}
	require.Empty(t, req.Validate())

	req = ChangePasswordRequest{CurrentPassword: "", NewPassword: "nodigitsoruppercase"}
	errs := req.Validate()
	require.Equal(t, Errors{
		"current_password: is required",
		"new_password: must contain at least one uppercase letter",
		"new_password: must contain at least one digit",
	}, errs)
}

func TestRefreshRequest(t *testing.T) {
	t.Parallel()

	req := RefreshRequest{RefreshToken: "   "}
	require.Equal(t, Errors{"refresh_token: is required"}, req.Validate())

	req = RefreshRequest{RefreshToken: " tok "}
	require.Empty(t, req.Validate())
	require.Equal(t, "tok", req.RefreshToken)
}
