package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fstop/apperr"
	"fstop/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:identity%d?mode=memory&cache=shared", dbSeq)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestEvents(t *testing.T) {
	events := NewEvents()
	var got []EventKind
	unsubscribe := events.Subscribe(func(ev Event) { got = append(got, ev.Kind) })

	events.Publish(context.Background(), SignedIn, &Identity{UID: "u1"})
	events.Publish(context.TODO(), SignedOut, &Identity{UID: "u1"})
	unsubscribe()
	unsubscribe()
	events.Publish(context.Background(), SignedIn, &Identity{UID: "u1"})

	assert.Equal(t, []EventKind{SignedIn, SignedOut}, got)
	assert.Equal(t, "signed_in", SignedIn.String())
}

func TestEventContext(t *testing.T) {
	assert.NotNil(t, Event{}.Context())
}

func TestFirebaseProvider(t *testing.T) {
	ctx := context.Background()

	newProvider := func(t *testing.T, status int, body string) *FirebaseProvider {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
			assert.Equal(t, "api-key", r.URL.Query().Get("key"))
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, true, req["returnSecureToken"])
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return NewFirebaseProvider(server.URL, "api-key")
	}
	creds := Credentials{Email: "ann@example.com", Password: "secret123"}

	t.Run("should map the signed-in user", func(t *testing.T) {
		p := newProvider(t, http.StatusOK, `{"localId":"uid-1","email":"ann@example.com","displayName":"Ann","profilePicture":"https://img/ann.png","idToken":"x"}`)
		id, err := p.Authenticate(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, &Identity{UID: "uid-1", Email: "ann@example.com", DisplayName: "Ann", PhotoURL: "https://img/ann.png"}, id)
	})

	t.Run("should reject bad credentials", func(t *testing.T) {
		p := newProvider(t, http.StatusBadRequest, `{"error":{"code":400,"message":"INVALID_PASSWORD"}}`)
		_, err := p.Authenticate(ctx, creds)
		assert.True(t, apperr.Is(err, apperr.Unauthorized))
	})

	t.Run("should report provider outages", func(t *testing.T) {
		p := newProvider(t, http.StatusServiceUnavailable, `{}`)
		_, err := p.Authenticate(ctx, creds)
		assert.True(t, apperr.Is(err, apperr.UpstreamUnavailable))

		p = newProvider(t, http.StatusOK, `{"email":"ann@example.com"}`)
		_, err = p.Authenticate(ctx, creds)
		assert.True(t, apperr.Is(err, apperr.UpstreamUnavailable))
	})

	t.Run("should report a canceled sign-in", func(t *testing.T) {
		p := newProvider(t, http.StatusOK, `{"localId":"uid-1"}`)
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.Authenticate(canceled, creds)
		assert.True(t, apperr.Is(err, apperr.AuthCanceled), "got %v", err)
	})
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(newTestDB(t))

	registered, err := p.Register(ctx, Credentials{Email: " Ann@Example.com ", Password: "secret123"}, "Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", registered.Email)
	assert.NotEmpty(t, registered.UID)

	t.Run("should reject a second account for the same email", func(t *testing.T) {
		_, err := p.Register(ctx, Credentials{Email: "ann@example.com", Password: "other1234"}, "")
		assert.True(t, apperr.Is(err, apperr.Duplicate))
	})

	t.Run("should authenticate with the right password", func(t *testing.T) {
		id, err := p.Authenticate(ctx, Credentials{Email: "ANN@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.UID, id.UID)
		assert.Equal(t, "Ann", id.DisplayName)
	})

	t.Run("should reject a wrong password or unknown email", func(t *testing.T) {
		_, err := p.Authenticate(ctx, Credentials{Email: "ann@example.com", Password: "nope"})
		assert.True(t, apperr.Is(err, apperr.Unauthorized))

		_, err = p.Authenticate(ctx, Credentials{Email: "bob@example.com", Password: "secret123"})
		assert.True(t, apperr.Is(err, apperr.Unauthorized))
	})
}

type fakeSessions struct {
	mu      sync.Mutex
	revoked []string
}

func (f *fakeSessions) Issue(id *Identity) (string, time.Time, error) {
	return "token-" + id.UID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (f *fakeSessions) Revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, token)
}

type stubProvider struct {
	id  *Identity
	err error
}

func (s stubProvider) Authenticate(context.Context, Credentials) (*Identity, error) { return s.id, s.err }
func (s stubProvider) Revoke(context.Context, *Identity) error                     { return nil }

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("should issue a session, mirror the user and publish", func(t *testing.T) {
		db := newTestDB(t)
		events := NewEvents()
		var published []*Identity
		events.Subscribe(func(ev Event) {
			if ev.Kind == SignedIn {
				published = append(published, ev.Identity)
			}
		})
		id := &Identity{UID: "uid-1", Email: "ann@example.com", DisplayName: "Ann"}
		svc := NewService(stubProvider{id: id}, &fakeSessions{}, events, db, zap.NewNop())

		session, err := svc.SignIn(ctx, Credentials{Email: "ann@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "token-uid-1", session.Token)
		assert.Equal(t, id, session.Identity)
		assert.Equal(t, []*Identity{id}, published)

		// A second sign-in updates the mirror in place.
		id.DisplayName = "Ann B."
		_, err = svc.SignIn(ctx, Credentials{Email: "ann@example.com", Password: "secret123"})
		require.NoError(t, err)

		user, err := svc.Mirror(ctx, "uid-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ann B.", user.DisplayName)
		assert.NotNil(t, user.LastLoginAt)

		none, err := svc.Mirror(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("should not publish a failed sign-in", func(t *testing.T) {
		events := NewEvents()
		calls := 0
		events.Subscribe(func(Event) { calls++ })
		svc := NewService(stubProvider{err: apperr.Msg("test", apperr.Unauthorized, "invalid credentials")},
			&fakeSessions{}, events, newTestDB(t), zap.NewNop())

		_, err := svc.SignIn(ctx, Credentials{Email: "ann@example.com", Password: "x"})
		assert.True(t, apperr.Is(err, apperr.Unauthorized))
		assert.Zero(t, calls)
	})

	t.Run("should revoke the session on sign-out", func(t *testing.T) {
		sessions := &fakeSessions{}
		events := NewEvents()
		var kinds []EventKind
		events.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })
		svc := NewService(stubProvider{}, sessions, events, newTestDB(t), zap.NewNop())

		svc.SignOut(ctx, "token-1", &Identity{UID: "uid-1"})
		svc.SignOut(ctx, "token-2", nil)

		assert.Equal(t, []string{"token-1", "token-2"}, sessions.revoked)
		assert.Equal(t, []EventKind{SignedOut}, kinds)
	})
}
