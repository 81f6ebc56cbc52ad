package users

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valkaylee/wildlifetracker/internal/tracker/storage/memory"
)

func TestRegisterLowercasesUsername(t *testing.T) {
	svc := New(memory.New(), "", nil)

	view, err := svc.Register(context.Background(), "  TrailCam  ", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if view.Username != "trailcam" {
		t.Fatalf("username: %q", view.Username)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := New(memory.New(), "", nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dupe", "one"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "DUPE", "two"); err == nil {
		t.Fatal("expected duplicate username error")
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	svc := New(memory.New(), "", nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pw"); err == nil {
		t.Fatal("expected error for empty username")
	}
	if _, err := svc.Register(ctx, "user", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc := New(memory.New(), "", nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "scout", "correct-horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "Scout", "correct-horse"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Login(ctx, "scout", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", err)
	}
}

func TestUpdateProfileDisplayNameWhitespaceGuard(t *testing.T) {
	store := memory.New()
	svc := New(store, "", nil)
	ctx := context.Background()

	view, err := svc.Register(ctx, "guarded", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Ranger Rick"
	if _, err := svc.UpdateProfile(ctx, view.ID, ProfileUpdate{DisplayName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	blank := "   "
	bio := ""
	updated, err := svc.UpdateProfile(ctx, view.ID, ProfileUpdate{DisplayName: &blank, Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != "Ranger Rick" {
		t.Fatalf("blank display name overwrote: %q", updated.DisplayName)
	}
	// Bio takes the empty string; presence wins for the other fields.
	if updated.Bio != "" {
		t.Fatalf("bio: %q", updated.Bio)
	}
}

func TestFindReportsAbsenceWithoutError(t *testing.T) {
	svc := New(memory.New(), "", nil)

	_, found, err := svc.Find(context.Background(), 55)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found {
		t.Fatal("phantom user found")
	}
}

func TestSaveProfilePicture(t *testing.T) {
	dir := t.TempDir()
	store := memory.New()
	svc := New(store, dir, nil)
	ctx := context.Background()

	view, err := svc.Register(ctx, "pictured", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	url, err := svc.SaveProfilePicture(ctx, view.ID, []byte{0xFF, 0xD8}, "image/jpeg", ".jpeg")
	if err != nil {
		t.Fatalf("save picture: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/profile-pictures/profile_") || !strings.HasSuffix(url, ".jpeg") {
		t.Fatalf("url: %q", url)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".jpeg" {
		t.Fatalf("stored files: %v", entries)
	}

	u, err := store.GetUser(ctx, view.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ProfilePictureURL != url {
		t.Fatalf("profile url not persisted: %q", u.ProfilePictureURL)
	}
}

func TestSaveProfilePictureRejectsNonImages(t *testing.T) {
	svc := New(memory.New(), t.TempDir(), nil)
	ctx := context.Background()

	view, err := svc.Register(ctx, "texty", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.SaveProfilePicture(ctx, view.ID, []byte("hello"), "text/plain", ".txt"); err == nil {
		t.Fatal("expected rejection of non-image upload")
	}
	if _, err := svc.SaveProfilePicture(ctx, view.ID, nil, "image/png", ".png"); err == nil {
		t.Fatal("expected rejection of empty upload")
	}
}
