package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

func formError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	var formErr *Error
	require.True(t, errors.As(err, &formErr), "expected *Error, got %T", err)
	return formErr
}

func TestStruct_ValidRegistration(t *testing.T) {
	err := Struct(client.RegisterRequest{
		Email:           "ada@example.com",
		OTP:             "123456",
		Username:        "ada_l-1815",
		Password:        "engine",
		ConfirmPassword: "engine",
		FullName:        "Ada Lovelace",
	})
	assert.NoError(t, err)
}

func TestStruct_RegistrationMessages(t *testing.T) {
	err := Struct(client.RegisterRequest{
		Email:           "not-an-email",
		OTP:             "12a456",
		Username:        "ada lovelace",
		Password:        "short",
		ConfirmPassword: "different",
		FullName:        "A",
	})
	formErr := formError(t, err)

	tests := map[string]string{
		"email":           "Please enter a valid email address",
		"otp":             "OTP must be 6 digits",
		"username":        "Username can only contain letters, numbers, underscore, and hyphen",
		"password":        "Password must be at least 6 characters",
		"confirmPassword": "Passwords don't match",
		"fullName":        "Full name must be at least 2 characters",
	}
	for field, want := range tests {
		assert.Equal(t, want, formErr.Message(field), field)
	}
}

func TestStruct_RequiredFields(t *testing.T) {
	formErr := formError(t, Struct(client.LoginRequest{}))

	assert.Equal(t, "Email is required", formErr.Message("email"))
	assert.Equal(t, "Password is required", formErr.Message("password"))
	assert.Equal(t, "Email is required; Password is required", formErr.Error())
}

func TestStruct_LengthLimits(t *testing.T) {
	formErr := formError(t, Struct(client.ProfileRequest{
		Username: strings.Repeat("a", 31),
		FullName: strings.Repeat("b", 101),
	}))

	assert.Equal(t, "Username is too long (max 30 characters)", formErr.Message("username"))
	assert.Equal(t, "Full name is too long (max 100 characters)", formErr.Message("fullName"))
}

func TestStruct_ResetPasswordUsesPasswordLabel(t *testing.T) {
	formErr := formError(t, Struct(client.ResetPasswordRequest{
		Email:           "ada@example.com",
		OTP:             "123456",
		NewPassword:     strings.Repeat("x", 101),
		ConfirmPassword: strings.Repeat("x", 101),
	}))

	assert.Equal(t, "Password is too long (max 100 characters)", formErr.Message("newPassword"))
	assert.Empty(t, formErr.Message("confirmPassword"))
}

func TestStruct_SliceElements(t *testing.T) {
	formErr := formError(t, Struct(client.SpriteRequest{
		Name:        "Slime",
		CategoryIDs: []string{"2f1e6b8e-9d0c-4a57-9a8e-3b8c1d2e4f50", "nope", "also-nope"},
	}))

	require.Len(t, formErr.Fields, 1)
	assert.Equal(t, "categoryIds", formErr.Fields[0].Field)
	assert.Equal(t, "Category must be a valid ID", formErr.Fields[0].Message)
}

func TestStruct_NegativePrice(t *testing.T) {
	formErr := formError(t, Struct(client.AssetPackRequest{Name: "Bundle", Price: -1}))
	assert.Equal(t, "Price must not be negative", formErr.Message("price"))
}
