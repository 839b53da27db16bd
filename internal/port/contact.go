package port

import (
	"context"

	"fundscope/internal/domain"
)

// ContactFinder looks up a person profile by name and company hints.
// A miss returns domain.ErrContactNotFound rather than a nil profile.
type ContactFinder interface {
	FindContact(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error)
}
