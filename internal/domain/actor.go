package domain

// Actor is the identity behind a request. The zero value is anonymous.
type Actor struct {
	UserID  uint64
	IsStaff bool
}

func (a Actor) Authenticated() bool { return a.UserID != 0 }
