package domain

import "errors"

var ErrSessionIDEmpty = errors.New("session id empty")

// SessionID is caller supplied and opaque.
type SessionID string

type Session struct {
	ID SessionID
}

// ParseSessionID accepts any non-empty string.
func ParseSessionID(raw string) (SessionID, error) {
	if raw == "" {
		return "", ErrSessionIDEmpty
	}
	return SessionID(raw), nil
}
