package types

import "github.com/google/uuid"

type ID string

// NewID returns a random UUIDv4 string identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// IsValidID reports whether v parses as a UUID.
func IsValidID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}
