package platform

import "github.com/google/uuid"

// NewID returns a random UUIDv4 string used as graph node ID.
func NewID() string {
	return uuid.New().String()
}
