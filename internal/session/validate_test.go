package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterForm_Validate(t *testing.T) {
	valid := RegisterForm{Name: "Ada", Email: "ada@example.com", Password: "abcdef", ConfirmPassword: "abcdef"}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name  string
		mut   func(f *RegisterForm)
		field string
		msg   string
	}{
		{"missing name", func(f *RegisterForm) { f.Name = "  " }, "name", "name is required"},
		{"missing email", func(f *RegisterForm) { f.Email = "" }, "email", "email is required"},
		{"bad email", func(f *RegisterForm) { f.Email = "ada" }, "email", "email is not valid"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "zzzzzz" }, "confirm_password", "passwords do not match"},
		{"short", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "abc12", "abc12" }, "password", "password must be at least 6 characters"},
		// mismatch is reported before length
		{"short and mismatch", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "abc", "abd" }, "confirm_password", "passwords do not match"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := valid
			tc.mut(&f)
			err := f.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("ada@example.com", "x"))
	assert.Error(t, ValidateLogin("ada@example.com", ""))
	assert.Error(t, ValidateLogin("", "x"))
}
