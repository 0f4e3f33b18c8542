package identity

import (
	"context"
	"errors"
	"strings"

	"fstop/apperr"
	"fstop/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalProvider checks bcrypt password hashes stored on the users table.
// It is meant for local development and tests.
type LocalProvider struct {
	db *gorm.DB
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// Register creates a local user with a hashed password.
func (p *LocalProvider) Register(ctx context.Context, creds Credentials, displayName string) (*Identity, error) {
	const op = "identity.LocalProvider.Register"

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	var existing int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	if existing > 0 {
		return nil, apperr.Msg(op, apperr.Duplicate, "account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, err)
	}
	user := models.User{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Msg(op, apperr.Duplicate, "account already exists")
		}
		return nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}
	return userIdentity(&user), nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	const op = "identity.LocalProvider.Authenticate"

	var user models.User
	err := p.db.WithContext(ctx).
		Where("email = ? AND password_hash <> ''", strings.ToLower(strings.TrimSpace(creds.Email))).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.Msg(op, apperr.Unauthorized, "invalid credentials")
	case ctx.Err() != nil:
		return nil, apperr.E(op, apperr.AuthCanceled, ctx.Err())
	case err != nil:
		return nil, apperr.E(op, apperr.UpstreamUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperr.Msg(op, apperr.Unauthorized, "invalid credentials")
	}
	return userIdentity(&user), nil
}

func (p *LocalProvider) Revoke(context.Context, *Identity) error {
	return nil
}

func userIdentity(u *models.User) *Identity {
	return &Identity{UID: u.UID, Email: u.Email, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}
