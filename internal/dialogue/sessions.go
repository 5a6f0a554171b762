package dialogue

import (
	"context"
	"sort"
	"sync"
	"time"

	"support-bot/internal/common/errors"
	"support-bot/internal/common/logger"
	"support-bot/internal/models"

	"github.com/google/uuid"
)

const maxSessionIDLength = 128

// Sessions keeps one engine per conversation. Turns on the same session run
// one at a time; different sessions run concurrently.
type Sessions struct {
	proto   *Engine
	logger  logger.Logger
	max     int
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	engine   *Engine
	lastUsed time.Time
}

// SessionOption configures Sessions.
type SessionOption func(*Sessions)

// WithMaxSessions caps live sessions; the least recently used is evicted
// when the cap is reached. Zero means no cap.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) { s.max = n }
}

// WithIdleTTL makes Sweep evict sessions unused for longer than ttl.
func WithIdleTTL(ttl time.Duration) SessionOption {
	return func(s *Sessions) { s.idleTTL = ttl }
}

func WithSessionLogger(log logger.Logger) SessionOption {
	return func(s *Sessions) { s.logger = log }
}

// NewSessions forks proto for every new conversation.
func NewSessions(proto *Engine, opts ...SessionOption) *Sessions {
	s := &Sessions{
		proto:    proto,
		logger:   logger.NewNoOpLogger(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts a conversation and returns its id.
func (s *Sessions) Open() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.getOrCreateLocked(id)
	s.mu.Unlock()
	return id
}

// Respond runs a turn on the session with the given id, creating the session
// if needed. An empty id opens a new session. The id used is returned.
func (s *Sessions) Respond(id, input string) (string, Turn, error) {
	return s.respond(id, input, false)
}

// ResetAndRespond clears the session context and runs a turn on it without
// letting another turn on the same session in between.
func (s *Sessions) ResetAndRespond(id, input string) (string, Turn, error) {
	return s.respond(id, input, true)
}

func (s *Sessions) respond(id, input string, reset bool) (string, Turn, error) {
	if len(id) > maxSessionIDLength {
		return "", Turn{}, errors.NewInvalidTurnInputError("sessionId is longer than 128 characters")
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	sess := s.getOrCreateLocked(id)
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if reset {
		sess.engine.ResetContext()
	}
	turn := sess.engine.Respond(input)
	sess.lastUsed = s.now()
	return id, turn, nil
}

// Reset clears the conversation context of an existing session.
func (s *Sessions) Reset(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.ResetContext()
	sess.lastUsed = s.now()
	return nil
}

// ClearEntities empties the entity store of an existing session.
func (s *Sessions) ClearEntities(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.engine.ClearEntities()
	return nil
}

// Context returns the conversation context of an existing session.
func (s *Sessions) Context(id string) (Context, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Context{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.Context(), nil
}

// Entities returns the accumulated entities of an existing session.
func (s *Sessions) Entities(id string) (models.Entities, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.Entities(), nil
}

// Close drops a session. Closing an unknown id is a no-op.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idle(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Evicted idle sessions", map[string]interface{}{
			"removed":   removed,
			"remaining": len(s.sessions),
		})
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return sess, nil
}

func (s *Sessions) getOrCreateLocked(id string) *session {
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	if s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldestLocked(len(s.sessions) - s.max + 1)
	}
	sess := &session{engine: s.proto.Fork(), lastUsed: s.now()}
	s.sessions[id] = sess
	return sess
}

func (s *Sessions) evictOldestLocked(n int) {
	type entry struct {
		id   string
		used time.Time
	}
	entries := make([]entry, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sess.mu.Lock()
		entries = append(entries, entry{id, sess.lastUsed})
		sess.mu.Unlock()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].used.Before(entries[j].used) })
	for _, e := range entries[:n] {
		delete(s.sessions, e.id)
	}
	s.logger.Debug("Evicted least recently used sessions", map[string]interface{}{"evicted": n})
}

func (s *session) idle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed.Before(cutoff)
}
