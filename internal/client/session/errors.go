package session

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/client/transport"
)

const (
	OpLogin    = "login"
	OpRegister = "register"
)

// User-facing messages for failed sign-in and sign-up.
const (
	MsgUserNotFound    = "User with this username doesn't exist."
	MsgInvalidPassword = "Invalid password."
	MsgLoginFailed     = "Error while logging in."
	MsgUserExists      = "User with this username already exists."
	MsgRegisterFailed  = "Error while registering."
)

// AuthError is returned by Login and Register. Message is what was shown to
// the user; Err carries the transport error kind.
type AuthError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// failureMessage maps a failed login/register status to the message shown
// to the user.
func failureMessage(op string, status int) string {
	switch op {
	case OpLogin:
		switch status {
		case http.StatusBadRequest:
			return MsgUserNotFound
		case http.StatusUnauthorized:
			return MsgInvalidPassword
		default:
			return MsgLoginFailed
		}
	default:
		if status == http.StatusBadRequest {
			return MsgUserExists
		}
		return MsgRegisterFailed
	}
}

func newAuthError(op string, err error) *AuthError {
	status := transport.StatusOf(err)
	return &AuthError{Op: op, Status: status, Message: failureMessage(op, status), Err: err}
}
