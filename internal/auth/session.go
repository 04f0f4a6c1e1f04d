package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"Tracker/internal/listing"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 31 * 24 * time.Hour
)

// FlashKind is the severity of a flash message.
type FlashKind string

const (
	FlashInfo    FlashKind = "info"
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot status message.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Session is the per-client state kept in Redis. Sort survives sign-out so
// the next sign-in resumes the previous order.
type Session struct {
	ID       string        `json:"-"`
	SignedIn bool          `json:"signed_in,omitempty"`
	Username string        `json:"username,omitempty"`
	Sort     listing.State `json:"sort"`
	Path     string        `json:"path,omitempty"`
	Flash    []Flash       `json:"flash,omitempty"`
}

// SignIn marks the session as authenticated for username.
func (s *Session) SignIn(username string) {
	s.SignedIn = true
	s.Username = username
}

// SignOut clears the identity and keeps everything else.
func (s *Session) SignOut() {
	s.SignedIn = false
	s.Username = ""
}

// AddFlash queues a message for the next response that reads the session.
func (s *Session) AddFlash(kind FlashKind, msg string) {
	s.Flash = append(s.Flash, Flash{Kind: kind, Message: msg})
}

// TakeFlash returns and clears the queued messages.
func (s *Session) TakeFlash() []Flash {
	out := s.Flash
	s.Flash = nil
	return out
}

// TakePath returns and clears the saved redirect target.
func (s *Session) TakePath() string {
	p := s.Path
	s.Path = ""
	return p
}

// Store manages sessions in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores a new empty session and returns it.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load returns the session with id, or nil if it does not exist.
func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.ID = id
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, b, s.ttl).Err()
}

// Rotate moves the session to a fresh ID and drops the old key.
func (s *Store) Rotate(ctx context.Context, sess *Session) error {
	id, err := newSessionID()
	if err != nil {
		return err
	}
	old := sess.ID
	sess.ID = id
	if err := s.Save(ctx, sess); err != nil {
		sess.ID = old
		return err
	}
	return s.Delete(ctx, old)
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
