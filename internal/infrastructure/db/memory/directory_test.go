package memory

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

func TestDirectory_SeededAccounts(t *testing.T) {
	dir, err := NewSeededDirectory(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if dir.Len() != 2 {
		t.Fatalf("expected 2 seeded records, got %d", dir.Len())
	}

	c, err := dir.FindByEmail(context.Background(), "creator@example.com")
	if err != nil {
		t.Fatalf("find creator: %v", err)
	}
	if c.Profile.Name != "Alex Creator" || c.Profile.Role != domain.RoleCreator {
		t.Fatalf("unexpected creator profile: %+v", c.Profile)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(SeedPassword)) != nil {
		t.Fatalf("seed hash does not match seed password")
	}
	if len(c.Profile.SocialConnections) != 2 {
		t.Fatalf("expected 2 social connections, got %d", len(c.Profile.SocialConnections))
	}
}

func TestDirectory_EmailLookupIsExact(t *testing.T) {
	dir, _ := NewSeededDirectory(bcrypt.MinCost)
	if _, err := dir.FindByEmail(context.Background(), "Creator@Example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDirectory_CreateDuplicate(t *testing.T) {
	dir := NewDirectory()
	cred := &domain.Credential{Profile: domain.UserProfile{ID: "brand-1", Email: "a@x.com"}, PasswordHash: "h"}

	if err := dir.Create(context.Background(), cred); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := dir.Create(context.Background(), cred); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestDirectory_ReturnedRecordsAreCopies(t *testing.T) {
	dir, _ := NewSeededDirectory(bcrypt.MinCost)
	ctx := context.Background()

	c, _ := dir.FindByEmail(ctx, "creator@example.com")
	c.Profile.Name = "mutated"
	c.Profile.SocialConnections[0].Metrics.Audience.Interests[0] = "mutated"

	again, _ := dir.FindByEmail(ctx, "creator@example.com")
	if again.Profile.Name != "Alex Creator" {
		t.Fatalf("directory record mutated through returned copy")
	}
	if again.Profile.SocialConnections[0].Metrics.Audience.Interests[0] != "Travel" {
		t.Fatalf("nested slice shared with caller")
	}
}

func TestDirectory_UpdateKeepsHash(t *testing.T) {
	dir, _ := NewSeededDirectory(bcrypt.MinCost)
	ctx := context.Background()

	c, _ := dir.FindByEmail(ctx, "brand@example.com")
	p := c.Profile
	p.Bio = "new bio"
	if err := dir.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	again, _ := dir.FindByEmail(ctx, "brand@example.com")
	if again.Profile.Bio != "new bio" {
		t.Fatalf("bio not updated: %q", again.Profile.Bio)
	}
	if again.PasswordHash != c.PasswordHash {
		t.Fatalf("password hash changed on profile update")
	}

	ghost := domain.UserProfile{Email: "ghost@x.com"}
	if err := dir.Update(ctx, &ghost); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDirectory_DeleteMatchesID(t *testing.T) {
	dir := NewDirectory()
	ctx := context.Background()
	cred := &domain.Credential{Profile: domain.UserProfile{ID: "creator-1", Email: "a@x.com"}, PasswordHash: "h"}
	if err := dir.Create(ctx, cred); err != nil {
		t.Fatalf("create: %v", err)
	}

	other := domain.UserProfile{ID: "creator-2", Email: "a@x.com"}
	if err := dir.Delete(ctx, &other); err != nil {
		t.Fatalf("delete with foreign id: %v", err)
	}
	if dir.Len() != 1 {
		t.Fatalf("record with a different id must survive")
	}

	if err := dir.Delete(ctx, &cred.Profile); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := dir.FindByEmail(ctx, "a@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	if err := dir.Delete(ctx, &cred.Profile); err != nil {
		t.Fatalf("deleting a missing record must succeed, got %v", err)
	}
}
