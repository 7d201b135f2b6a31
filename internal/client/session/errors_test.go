package session

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/stretchr/testify/assert"
)

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		op     string
		status int
		want   string
	}{
		{OpLogin, http.StatusBadRequest, MsgUserNotFound},
		{OpLogin, http.StatusUnauthorized, MsgInvalidPassword},
		{OpLogin, http.StatusInternalServerError, MsgLoginFailed},
		{OpLogin, 0, MsgLoginFailed},
		{OpRegister, http.StatusBadRequest, MsgUserExists},
		{OpRegister, http.StatusConflict, MsgRegisterFailed},
		{OpRegister, 0, MsgRegisterFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, failureMessage(tt.op, tt.status), "%s/%d", tt.op, tt.status)
	}
}

func TestNewAuthError(t *testing.T) {
	err := newAuthError(OpLogin, &transport.HTTPError{Status: http.StatusUnauthorized, Message: "bad password"})

	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.Equal(t, MsgInvalidPassword, err.Message)
	assert.Equal(t, "login: Invalid password.", err.Error())
	assert.ErrorIs(t, err, transport.ErrUnauthorized)

	var httpErr *transport.HTTPError
	assert.True(t, errors.As(err, &httpErr))
}
