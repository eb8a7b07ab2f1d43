package session

import (
	"context"
	"sync"
	"time"

	"myitinerary/internal/modules/itinerary"
	"myitinerary/internal/types"
)

// Session owns the active itinerary for one client. At most one generate or adjust
// call runs at a time; a result is applied only if the session is still open and
// has not been reset since the call began.
type Session struct {
	ID        types.ID
	User      User
	CreatedAt time.Time

	mu         sync.Mutex
	itinerary  *itinerary.Itinerary
	summary    *itinerary.Summary
	drift      []itinerary.DriftIssue
	epoch      uint64
	seq        uint64
	inflight   uint64
	cancel     context.CancelFunc
	closed     bool
	lastActive time.Time
}

func New(user User) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         types.NewID(),
		User:       user,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Begin reserves the session for one operation. The returned context is cancelled by
// Close (abort) or Finish; callers must always call Finish with the ticket.
func (s *Session) Begin(ctx context.Context, op string) (Ticket, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Ticket{}, nil, ErrClosed
	}
	if s.inflight != 0 {
		return Ticket{}, nil, ErrBusy
	}
	cctx, cancel := context.WithCancel(ctx)
	s.seq++
	s.inflight = s.seq
	s.cancel = cancel
	s.lastActive = time.Now().UTC()
	return Ticket{seq: s.seq, epoch: s.epoch, op: op}, cctx, nil
}

// Commit replaces the active itinerary wholesale. A nil summary keeps the current one.
// It returns ErrStale, and applies nothing, when the session was closed or reset after
// the ticket was issued.
func (s *Session) Commit(t Ticket, it *itinerary.Itinerary, summary *itinerary.Summary, drift []itinerary.DriftIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || t.epoch != s.epoch || t.seq != s.inflight {
		return ErrStale
	}
	s.itinerary = it
	if summary != nil {
		s.summary = summary
	}
	s.drift = drift
	s.lastActive = time.Now().UTC()
	return nil
}

// Finish releases the in-flight slot held by t.
func (s *Session) Finish(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.seq != s.inflight {
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inflight = 0
}

// Reset drops the active itinerary. Any call in flight is aborted and its result discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortLocked()
	s.itinerary = nil
	s.summary = nil
	s.drift = nil
}

// Close abandons the session: the call in flight is aborted and its late result discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortLocked()
	s.closed = true
}

func (s *Session) abortLocked() {
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.inflight = 0
}

// UsageKey is the key the in-flight gate and the quota are charged to: the user's
// key, or the session itself for the placeholder user.
func (s *Session) UsageKey() string {
	if k := s.User.Key(); k != "" {
		return k
	}
	return "session:" + s.ID.String()
}

// Itinerary returns the active itinerary and its summary, both possibly nil.
func (s *Session) Itinerary() (*itinerary.Itinerary, *itinerary.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itinerary, s.summary
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != 0
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.ID,
		User:       s.User,
		Itinerary:  s.itinerary,
		Summary:    s.summary,
		Drift:      s.drift,
		Busy:       s.inflight != 0,
		Closed:     s.closed,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
	}
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight == 0 && s.lastActive.Before(cutoff)
}
