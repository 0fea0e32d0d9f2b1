package utils

import "github.com/google/uuid"

// NewID returns a fresh UUID string used as primary key for all entities.
func NewID() string { return uuid.NewString() }
