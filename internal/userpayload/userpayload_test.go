package userpayload

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/blog/internal/validate"
)

func str(s string) *string { return &s }

func TestRegisterRequestBind(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/register/", nil)

	ok := &RegisterRequest{
		Username:             str("peter"),
		Email:                str("peter@example.com"),
		Password:             str("pw"),
		PasswordConfirmation: str("other"),
	}
	assert.NoError(t, ok.Bind(r), "mismatched passwords are checked by the handler")

	bad := &RegisterRequest{Username: str(""), Email: str("not-an-email")}
	var errs validate.Errors
	require.ErrorAs(t, bad.Bind(r), &errs)
	assert.Equal(t, validate.Errors{
		"username":              validate.MsgBlank,
		"email":                 "Enter a valid email address.",
		"password":              validate.MsgRequired,
		"password_confirmation": validate.MsgRequired,
	}, errs)
}

func TestLoginRequestBind(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login/", nil)

	var errs validate.Errors
	require.ErrorAs(t, (&LoginRequest{Username: str("peter")}).Bind(r), &errs)
	assert.Equal(t, validate.Errors{"password": validate.MsgRequired}, errs)

	assert.NoError(t, (&LoginRequest{Username: str("peter"), Password: str("pw")}).Bind(r))
}
