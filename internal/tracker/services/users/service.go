package users

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/valkaylee/wildlifetracker/internal/tracker/domain/user"
	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

// ErrInvalidCredentials is returned by Login for a bad username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ProfileUpdate carries the optional profile fields of an update request.
// Nil pointers leave the field untouched.
type ProfileUpdate struct {
	DisplayName       *string `json:"displayName"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

// Service manages user accounts and profiles.
type Service struct {
	store      storage.UserStore
	log        *logger.Logger
	uploadsDir string
}

// New constructs a user service. uploadsDir is where profile pictures land;
// empty disables uploads.
func New(store storage.UserStore, uploadsDir string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log, uploadsDir: uploadsDir}
}

// Register creates an account with a bcrypt-hashed password. Usernames are
// lowercased so logins are case-insensitive.
func (s *Service) Register(ctx context.Context, username, password string) (user.View, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return user.View{}, fmt.Errorf("username and password are required")
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return user.View{}, fmt.Errorf("username %s already exists", username)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return user.View{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.View{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return user.View{}, err
	}
	s.log.WithField("user_id", created.ID).WithField("username", created.Username).Info("user registered")
	return created.AsView(), nil
}

// Login verifies credentials and returns the account view.
func (s *Service) Login(ctx context.Context, username, password string) (user.View, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.View{}, ErrInvalidCredentials
		}
		return user.View{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.View{}, ErrInvalidCredentials
	}
	return u.AsView(), nil
}

// Find looks a user up by id. Absence is reported through the bool, not an
// error, so callers can shape their own not-found responses.
func (s *Service) Find(ctx context.Context, id int64) (user.User, bool, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, false, nil
		}
		return user.User{}, false, err
	}
	return u, true, nil
}

// UpdateProfile applies an update request. A display name that is absent or
// whitespace-only is left unchanged; bio and picture URL are overwritten
// whenever the field is present, empty string included.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req ProfileUpdate) (user.View, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.View{}, err
	}

	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) != "" {
		u.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.ProfilePictureURL != nil {
		u.ProfilePictureURL = *req.ProfilePictureURL
	}

	saved, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.View{}, err
	}
	s.log.WithField("user_id", id).Info("profile updated")
	return saved.AsView(), nil
}

// SaveProfilePicture stores an uploaded image and points the user's profile
// picture URL at it. The stored filename is randomized; ext must carry the
// leading dot and defaults to .jpg.
func (s *Service) SaveProfilePicture(ctx context.Context, id int64, data []byte, contentType, ext string) (string, error) {
	if s.uploadsDir == "" {
		return "", fmt.Errorf("profile picture uploads are not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("file must be an image")
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return "", err
	}

	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("profile_%d_%s%s", id, uuid.NewString(), ext)
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadsDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write profile picture: %w", err)
	}

	u.ProfilePictureURL = "/uploads/profile-pictures/" + name
	if _, err := s.store.UpdateUser(ctx, u); err != nil {
		return "", err
	}
	s.log.WithField("user_id", id).WithField("file", name).Info("profile picture uploaded")
	return u.ProfilePictureURL, nil
}
