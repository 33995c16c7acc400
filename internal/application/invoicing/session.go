package invoicing

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// DefaultSessionTTL is how long an idle editing session is kept
const DefaultSessionTTL = 30 * time.Minute

// Session is one open invoice editor. Baseline is nil for a new invoice and
// never changes after the session is opened.
type Session struct {
	ID        uuid.UUID
	Draft     *invoice.Draft
	Baseline  *invoice.Baseline
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// IsNew reports whether the session edits an invoice that does not exist yet
func (s Session) IsNew() bool {
	return s.Baseline == nil
}

type sessionEntry struct {
	session    Session
	submitting bool
}

// SessionStore keeps editing sessions in memory. Sessions expire after ttl
// without access and are discarded on successful save.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*sessionEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSessionStore creates a session store and starts its cleanup loop
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &SessionStore{
		sessions: make(map[uuid.UUID]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Open registers a new session for draft and baseline
func (s *SessionStore) Open(draft *invoice.Draft, baseline *invoice.Baseline) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := Session{
		ID:        uuid.New(),
		Draft:     cloneDraft(draft),
		Baseline:  baseline,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.ID] = &sessionEntry{session: sess}
	return copySession(sess)
}

// Get returns a copy of the session and extends its expiry
func (s *SessionStore) Get(id uuid.UUID) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	e.session.ExpiresAt = s.now().Add(s.ttl)
	return copySession(e.session), nil
}

// SaveDraft replaces the session draft
func (s *SessionStore) SaveDraft(id uuid.UUID, draft *invoice.Draft) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if e.submitting {
		return Session{}, ErrSaveInProgress
	}
	now := s.now()
	e.session.Draft = cloneDraft(draft)
	e.session.UpdatedAt = now
	e.session.ExpiresAt = now.Add(s.ttl)
	return copySession(e.session), nil
}

// BeginSubmit stores draft and marks the session as saving. Only one save
// per session may be in flight; EndSubmit must follow.
func (s *SessionStore) BeginSubmit(id uuid.UUID, draft *invoice.Draft) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	if e.submitting {
		return Session{}, ErrSaveInProgress
	}
	now := s.now()
	e.submitting = true
	e.session.Draft = cloneDraft(draft)
	e.session.UpdatedAt = now
	e.session.ExpiresAt = now.Add(s.ttl)
	return copySession(e.session), nil
}

// EndSubmit clears the saving mark. A saved session is discarded; a failed
// one keeps its draft for correction and resubmission.
func (s *SessionStore) EndSubmit(id uuid.UUID, saved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return
	}
	if saved {
		delete(s.sessions, id)
		return
	}
	e.submitting = false
}

// Discard drops the session. Unknown ids are ignored.
func (s *SessionStore) Discard(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Size returns the number of live sessions
func (s *SessionStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *SessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *SessionStore) lookup(id uuid.UUID) (*sessionEntry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !e.submitting && s.now().After(e.session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return e, nil
}

func (s *SessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired sessions that are not mid-save
func (s *SessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.sessions {
		if !e.submitting && now.After(e.session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

func copySession(sess Session) Session {
	sess.Draft = cloneDraft(sess.Draft)
	return sess
}

// cloneDraft deep-copies the draft so callers never share lines or
// pointers with the store
func cloneDraft(d *invoice.Draft) *invoice.Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Lines = make([]invoice.Line, len(d.Lines))
	copy(c.Lines, d.Lines)
	for i, l := range c.Lines {
		if l.ItemID != nil {
			id := *l.ItemID
			c.Lines[i].ItemID = &id
		}
	}
	if d.InvoiceID != nil {
		id := *d.InvoiceID
		c.InvoiceID = &id
	}
	if d.ClientID != nil {
		id := *d.ClientID
		c.ClientID = &id
	}
	if d.FreeItemsValue != nil {
		v := *d.FreeItemsValue
		c.FreeItemsValue = &v
	}
	return &c
}
