// Package models holds the client-side data types shared by the session,
// profile and CLI layers.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is assumed when the server omits the user's currency.
const DefaultCurrency = money.USD

// ErrUnknownCurrency is returned for currency codes go-money does not know.
var ErrUnknownCurrency = errors.New("unknown currency")

// User is the authenticated user's profile as cached by the client.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Currency string `json:"currency"`
}

// RawUser is the wire shape of a user object; every field may be missing.
type RawUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Currency string `json:"currency,omitempty"`
}

// MapUser normalises a wire user: missing currency becomes DefaultCurrency
// and codes are upper-cased.
func MapUser(raw RawUser) User {
	cur := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if cur == "" {
		cur = DefaultCurrency
	}
	return User{ID: raw.ID, Username: raw.Username, Currency: cur}
}

// CurrencyInfo returns the go-money description of the user's currency.
// Unknown codes yield a currency with the code and no formatting rules.
func (u User) CurrencyInfo() *money.Currency {
	return money.New(0, u.Currency).Currency()
}

// FormatAmount renders an amount in minor units using the user's currency.
func (u User) FormatAmount(minor int64) string {
	return money.New(minor, u.Currency).Display()
}

// UserPatch is a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

// Validate upper-cases the currency in place and rejects unknown codes and
// blank usernames.
func (p *UserPatch) Validate() error {
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		return errors.New("username must not be blank")
	}
	if p.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*p.Currency))
		if money.GetCurrency(code) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownCurrency, *p.Currency)
		}
		p.Currency = &code
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Currency == nil
}
