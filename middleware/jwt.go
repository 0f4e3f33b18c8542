package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fstop/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	SessionCookie = "fstop_session"

	localsIdentity = "identity"
	localsToken    = "sessionToken"
)

type sessionClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name,omitempty"`
	PhotoURL    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues HS256 session tokens and keeps a revocation list of token
// ids until they would have expired anyway.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue generates a session token for id.
func (s *Sessions) Issue(id *identity.Identity) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return token, exp, err
}

// Parse validates a token and returns the identity it carries.
func (s *Sessions) Parse(tokenString string) (*identity.Identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("invalid token payload")
	}
	if s.isRevoked(claims.ID) {
		return nil, fmt.Errorf("session signed out")
	}
	return &identity.Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
	}, nil
}

// Revoke blocks a token for the rest of its lifetime. Unparseable tokens are ignored.
func (s *Sessions) Revoke(tokenString string) {
	var claims sessionClaims
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims)
	if err != nil || claims.ID == "" {
		return
	}
	exp := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = exp
	s.pruneLocked()
}

func (s *Sessions) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *Sessions) pruneLocked() {
	now := s.now()
	for jti, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, jti)
		}
	}
}

// Optional attaches the identity when a valid session is present and never rejects.
func (s *Sessions) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := sessionToken(c); token != "" {
			if id, err := s.Parse(token); err == nil {
				c.Locals(localsIdentity, id)
				c.Locals(localsToken, token)
			}
		}
		return c.Next()
	}
}

// Required rejects requests without a valid session.
func (s *Sessions) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}
		id, err := s.Parse(token)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}
		c.Locals(localsIdentity, id)
		c.Locals(localsToken, token)
		return c.Next()
	}
}

// CurrentIdentity returns the identity set by the session middleware, or nil.
func CurrentIdentity(c *fiber.Ctx) *identity.Identity {
	id, _ := c.Locals(localsIdentity).(*identity.Identity)
	return id
}

func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localsToken).(string)
	return token
}

func sessionToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return c.Cookies(SessionCookie)
}
