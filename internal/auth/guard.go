// Package auth decides who may see and drive a given order.
package auth

import (
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not authorized to access this order")
)

// Capability is what a principal may do with one specific order. Admin
// covers the admin-only transitions (mark-delivered, force status, list-all).
type Capability struct {
	Read   bool
	Mutate bool
	Admin  bool
}

// Authorize checks the principal against the order's owner. Admins get
// everything, owners get the owner-permitted operations, anyone else gets an
// error: ErrUnauthenticated for anonymous callers, ErrForbidden otherwise.
func Authorize(p domain.Principal, order *domain.Order) (Capability, error) {
	if p.Anonymous() {
		return Capability{}, ErrUnauthenticated
	}
	if p.Admin {
		return Capability{Read: true, Mutate: true, Admin: true}, nil
	}
	if p.Owns(order) {
		return Capability{Read: true, Mutate: true}, nil
	}
	return Capability{}, ErrForbidden
}

// RequireAdmin gates operations that have no single target order, like
// listing every order in the store.
func RequireAdmin(p domain.Principal) error {
	if p.Anonymous() {
		return ErrUnauthenticated
	}
	if !p.Admin {
		return ErrForbidden
	}
	return nil
}
