package core

import "github.com/google/uuid"

// NewID returns a new random unique identifier. Used for correlation ids and
// thought ids throughout the module.
func NewID() string { return uuid.NewString() }
