package engine

import "github.com/google/uuid"

// SessionIDGenerator names a new journal session.
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-sortable session ids, so ListSessions returns
// sessions in creation order.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
