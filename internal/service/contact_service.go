package service

import (
	"context"
	"strings"

	"fundscope/internal/domain"
	"fundscope/internal/port"
)

// ContactService looks up fund-manager contact profiles.
type ContactService interface {
	Search(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error)
}

type contactService struct {
	finder port.ContactFinder
}

// NewContactService creates a new ContactService implementation. A nil
// finder disables lookups; every search then reports not found.
func NewContactService(finder port.ContactFinder) ContactService {
	return &contactService{finder: finder}
}

func (s *contactService) Search(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" || s.finder == nil {
		return nil, domain.ErrContactNotFound
	}

	cleaned := make([]string, 0, len(companies))
	for _, c := range companies {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return s.finder.FindContact(ctx, name, cleaned)
}
