package store

import (
	"context"
	"strconv"
	"time"
)

// Session implements domain.AdminSession on top of the local store. The
// token is opaque: it marks the admin as logged in on this machine, it is
// not validated against the service.
type Session struct {
	store *Store
}

// NewSession wraps the store's admin_session row as a capability object.
func NewSession(s *Store) *Session {
	return &Session{store: s}
}

func (s *Session) IsAuthenticated() bool {
	token, err := s.store.SessionToken(context.Background())
	if err != nil {
		s.store.logger.Warn("cannot read admin session", "err", err)
		return false
	}
	return token != ""
}

// Login stores the token. An empty token gets a timestamp marker, which
// is all the session needs to exist.
func (s *Session) Login(token string) error {
	if token == "" {
		token = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	return s.store.SaveSessionToken(context.Background(), token)
}

func (s *Session) Logout() error {
	return s.store.ClearSessionToken(context.Background())
}
