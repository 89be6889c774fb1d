package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/orgdesk/orgdesk-server/internal/apierrors"
	"github.com/orgdesk/orgdesk-server/internal/logger"
	"github.com/orgdesk/orgdesk-server/internal/model"
)

// Profile serves the current user's profile and avatar. Avatars live in
// object storage keyed by user ID; the user row only holds the key.
type Profile struct {
	users   model.UserStore
	storage model.Storage
	logger  *logger.Logger
}

func NewProfile(users model.UserStore, storage model.Storage, logger *logger.Logger) *Profile {
	return &Profile{users: users, storage: storage, logger: logger}
}

func (p *Profile) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateName changes the display name.
func (p *Profile) UpdateName(ctx context.Context, userID uuid.UUID, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, apierrors.NewBadRequest("name required")
	}

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	user.Name = name

	saved, err := p.users.Update(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return saved, nil
}

const maxAvatarSize = 2 << 20 // 2 MiB

// UploadAvatar stores the avatar and records its key on the user.
func (p *Profile) UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, reader io.Reader, size int64) error {
	if size <= 0 || size > maxAvatarSize {
		return apierrors.NewBadRequest("avatar must be between 1 byte and 2 MiB")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return apierrors.NewBadRequest("avatar must be an image")
	}

	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	key := "avatars/" + userID.String()
	if err := p.storage.Upload(ctx, key, contentType, reader, size); err != nil {
		return fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarKey = &key
	if _, err := p.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to record avatar key: %w", err)
	}

	p.logger.Debug("Profile service: avatar uploaded", "user_id", userID)
	return nil
}

// DownloadAvatar streams the avatar back. Callers must close the reader.
func (p *Profile) DownloadAvatar(ctx context.Context, userID uuid.UUID) (io.ReadCloser, string, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user.AvatarKey == nil {
		return nil, "", model.ErrNotFound
	}

	reader, contentType, err := p.storage.Download(ctx, *user.AvatarKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download avatar: %w", err)
	}
	return reader, contentType, nil
}
