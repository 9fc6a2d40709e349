// Package accounts checks user credentials.
package accounts

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"supportdesk/internal/models"
	"supportdesk/internal/store"
	"supportdesk/internal/utils"
)

// ErrInvalidCredentials covers an unknown email, an unverified account and a
// wrong password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash is compared against when no verified user matches, so unknown
// emails cost the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() string {
	h, err := utils.HashPassword("not-a-real-password-0")
	if err != nil {
		panic("accounts: dummy hash: " + err.Error())
	}
	return h
})

type Authenticator struct {
	store   *store.Store
	compare func(hash, password string) error
}

func NewAuthenticator(st *store.Store) *Authenticator {
	return &Authenticator{store: st, compare: utils.CheckPasswordHash}
}

// Authenticate returns the verified user owning email when password matches.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.store.VerifiedUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = a.compare(dummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := a.compare(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
