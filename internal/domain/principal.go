package domain

// Principal is the authenticated actor behind a request. Every core
// operation receives it explicitly; nothing is read from ambient state.
type Principal struct {
	UserID string
	Admin  bool
}

// Anonymous reports whether no authenticated user is attached.
func (p Principal) Anonymous() bool {
	return p.UserID == ""
}

// Owns reports whether the principal is the owner of the given order.
func (p Principal) Owns(o *Order) bool {
	return !p.Anonymous() && o != nil && o.UserID == p.UserID
}
