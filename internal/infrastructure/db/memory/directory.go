package memory

import (
	"context"
	"sync"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

// Directory is an in-process credential directory. Records are copied on
// the way in and out so callers never share state with the map.
type Directory struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.Credential
}

var _ ports.Directory = (*Directory)(nil)

func NewDirectory(records ...domain.Credential) *Directory {
	d := &Directory{byEmail: make(map[string]*domain.Credential, len(records))}
	for i := range records {
		d.byEmail[records[i].Profile.Email] = cloneCredential(&records[i])
	}
	return d
}

func (d *Directory) FindByEmail(_ context.Context, email string) (*domain.Credential, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneCredential(c), nil
}

func (d *Directory) Create(_ context.Context, cred *domain.Credential) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[cred.Profile.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	d.byEmail[cred.Profile.Email] = cloneCredential(cred)
	return nil
}

func (d *Directory) Update(_ context.Context, profile *domain.UserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.byEmail[profile.Email]
	if !ok {
		return domain.ErrUserNotFound
	}
	c.Profile = *profile.Clone()
	return nil
}

func (d *Directory) Delete(_ context.Context, profile *domain.UserProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.byEmail[profile.Email]; ok && c.Profile.ID == profile.ID {
		delete(d.byEmail, profile.Email)
	}
	return nil
}

// Len reports how many records the directory holds.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byEmail)
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	return &domain.Credential{Profile: *c.Profile.Clone(), PasswordHash: c.PasswordHash}
}
