package identity

import (
	"context"
	"errors"
	"time"

	"fstop/apperr"
	"fstop/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionIssuer mints and revokes session tokens for an identity.
type SessionIssuer interface {
	Issue(id *Identity) (token string, expiresAt time.Time, err error)
	Revoke(token string)
}

// Session is returned to the client after a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  *Identity `json:"user"`
}

type Service struct {
	provider Provider
	sessions SessionIssuer
	events   *Events
	db       *gorm.DB
	log      *zap.Logger
	now      func() time.Time
}

func NewService(provider Provider, sessions SessionIssuer, events *Events, db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		provider: provider,
		sessions: sessions,
		events:   events,
		db:       db,
		log:      log,
		now:      time.Now,
	}
}

// SignIn authenticates upstream, refreshes the local mirror, issues a session
// and publishes SignedIn.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	const op = "identity.SignIn"

	id, err := s.provider.Authenticate(ctx, creds)
	if err != nil {
		if apperr.Is(err, apperr.UpstreamUnavailable) {
			s.log.Warn("auth provider unavailable", zap.String("op", op), zap.Error(err))
		}
		return nil, err
	}

	if err := s.refreshMirror(ctx, id); err != nil {
		s.log.Warn("identity mirror refresh failed", zap.String("uid", id.UID), zap.Error(err))
	}

	token, exp, err := s.sessions.Issue(id)
	if err != nil {
		return nil, apperr.E(op, apperr.Internal, err)
	}

	s.events.Publish(ctx, SignedIn, id)
	return &Session{Token: token, ExpiresAt: exp, Identity: id}, nil
}

// SignOut always clears the local session. An upstream revoke failure is
// logged and otherwise ignored.
func (s *Service) SignOut(ctx context.Context, token string, id *Identity) {
	s.sessions.Revoke(token)
	if id == nil {
		return
	}
	if err := s.provider.Revoke(ctx, id); err != nil {
		s.log.Warn("upstream sign-out failed", zap.String("uid", id.UID), zap.Error(err))
	}
	s.events.Publish(ctx, SignedOut, id)
}

// Mirror returns the local mirror record for uid, or nil.
func (s *Service) Mirror(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.E("identity.Mirror", apperr.UpstreamUnavailable, err)
	}
	return &user, nil
}

func (s *Service) refreshMirror(ctx context.Context, id *Identity) error {
	at := s.now()
	user := models.User{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		LastLoginAt: &at,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "photo_url", "last_login_at", "updated_at"}),
	}).Create(&user).Error
}
