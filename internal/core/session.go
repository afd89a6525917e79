package core

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"grabbit/pkg/linkref"
)

// Session is the per-user resolution context bridging the metadata card
// and the follow-up quality choice. At most one session exists per user;
// a new link overwrites the previous session (last write wins).
type Session struct {
	UserID    int64
	Ref       linkref.Ref
	RawText   string
	Track     *TrackMetadata
	Video     *VideoInfo
	Post      *PostInfo
	CreatedAt time.Time
}

// SessionStore keeps active sessions keyed by user id, bounded by an LRU
// so abandoned sessions are evicted instead of accumulating.
type SessionStore struct {
	cache *lru.Cache[int64, *Session]
}

// NewSessionStore creates a store holding at most capacity sessions.
func NewSessionStore(capacity int) (*SessionStore, error) {
	cache, err := lru.New[int64, *Session](capacity)
	if err != nil {
		return nil, err
	}
	return &SessionStore{cache: cache}, nil
}

// Put stores the session, replacing any existing session for the user.
func (s *SessionStore) Put(session *Session) {
	s.cache.Add(session.UserID, session)
}

// Get returns the user's active session, if any.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	return s.cache.Get(userID)
}

// Delete invalidates the user's session. Deleting an absent session is a
// no-op.
func (s *SessionStore) Delete(userID int64) {
	s.cache.Remove(userID)
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
