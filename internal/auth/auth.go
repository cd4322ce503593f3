// Package auth owns the credential store and the in-memory session table.
//
// Sessions are explicit values: callers receive a Session from Login or
// Resume and pass its UserID into the services. Nothing reads the current
// user from ambient state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"spendwise/internal/log"
	"spendwise/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	// MaxPasswordLength is the bcrypt input limit, in bytes.
	MaxPasswordLength = 72
	DefaultSessionTTL = 30 * 24 * time.Hour
)

var (
	ErrUsernameTooShort   = fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no active session")
)

// IsPolicy reports whether err is a registration policy violation.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrUsernameTooShort) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrPasswordMismatch)
}

// User is the persisted credential record stored under user_<username>.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session identifies an authenticated user until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Service struct {
	store  storage.Store
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger *log.Logger

	// serializes the uniqueness check in Register
	registerMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]Session

	events *broadcaster
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l.WithComponent(log.ComponentAuth) }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		ttl:      DefaultSessionTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		logger:   log.FromContext(context.Background()).WithComponent(log.ComponentAuth),
		sessions: make(map[string]Session),
		events:   newBroadcaster(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. The policy checks run before the store is touched.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (User, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return User{}, ErrUsernameTooShort
	}
	if len(password) < MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return User{}, ErrPasswordTooLong
	}
	if password != confirm {
		return User{}, ErrPasswordMismatch
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	var existing User
	found, err := storage.GetJSON(ctx, s.store, storage.UserKey(username), &existing)
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}
	if found {
		return User{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := storage.PutJSON(ctx, s.store, storage.UserKey(username), u); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, "username", username)
	return u, nil
}

// Lookup returns the user registered as username.
func (s *Service) Lookup(ctx context.Context, username string) (User, bool, error) {
	var u User
	found, err := storage.GetJSON(ctx, s.store, storage.UserKey(strings.TrimSpace(username)), &u)
	if err != nil {
		return User{}, false, fmt.Errorf("load user: %w", err)
	}
	return u, found, nil
}

// Login verifies the credentials and opens a new session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	var u User
	found, err := storage.GetJSON(ctx, s.store, storage.UserKey(username), &u)
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	// no stored hash can match a password bcrypt refuses to hash
	if !found || len(password) > MaxPasswordLength {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Failed login attempt", "username", username)
		return Session{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.ID)
	s.events.publish(Event{Kind: EventLogin, Session: sess, At: now})
	return sess, nil
}

// Resume returns the live session for token. Expired sessions are destroyed.
func (s *Service) Resume(_ context.Context, token string) (Session, error) {
	now := s.now().UTC()
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && sess.expired(now) {
		delete(s.sessions, token)
	}
	s.mu.Unlock()

	if !ok {
		return Session{}, ErrNoSession
	}
	if sess.expired(now) {
		s.events.publish(Event{Kind: EventExpired, Session: sess, At: now})
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Logout destroys the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if !ok {
		return
	}
	s.logger.InfoContext(ctx, "User logged out", log.FieldUserID, sess.UserID)
	s.events.publish(Event{Kind: EventLogout, Session: sess, At: s.now().UTC()})
}

// CleanExpired drops every expired session and returns how many were removed.
// It satisfies cache.Cleaner so the cache manager can sweep sessions too.
func (s *Service) CleanExpired() int {
	now := s.now().UTC()
	var expired []Session
	s.mu.Lock()
	for token, sess := range s.sessions {
		if sess.expired(now) {
			delete(s.sessions, token)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.events.publish(Event{Kind: EventExpired, Session: sess, At: now})
	}
	return len(expired)
}

// Subscribe returns a stream of auth state changes. Calling cancel closes the
// channel; slow subscribers miss events rather than blocking logins.
func (s *Service) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}
