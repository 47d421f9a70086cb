package store

// Session is the single currently-authenticated-user slot for one store
// instance. It is constructed by the host application and handed to the
// store's constructor; the store hydrates it from the persisted
// current-user document and keeps both in sync.
type Session struct {
	current *User
}

func NewSession() *Session {
	return &Session{}
}

// User returns a copy of the current user, or nil when nobody is signed in.
func (s *Session) User() *User {
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

func (s *Session) set(u *User) {
	if u == nil {
		s.current = nil
		return
	}
	copied := *u
	s.current = &copied
}

func (s *Session) clear() {
	s.current = nil
}
