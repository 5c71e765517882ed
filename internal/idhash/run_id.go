package idhash

import "github.com/google/uuid"

// NewRunID returns a random identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}
