package store

import (
	"context"
	"errors"

	"github.com/joescharf/tomato/internal/models"
)

// ErrNotFound is returned by Load when no state has been saved yet.
var ErrNotFound = errors.New("state file not found")

// Store defines the persistence interface for the timer state.
type Store interface {
	// Load returns the saved session, or ErrNotFound on first run.
	Load(ctx context.Context) (*models.Session, error)
	// Save replaces the saved session in full.
	Save(ctx context.Context, s *models.Session) error
	// Path reports where the state lives, for display.
	Path() string
}
