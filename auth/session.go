package auth

import "sync"

// Session holds the current identity and notifies subscribers whenever it
// changes. A nil identity means nobody is signed in.
type Session struct {
	mu       sync.Mutex
	identity *Identity
	nextID   int
	subs     map[int]func(*Identity)
}

func NewSession(identity *Identity) *Session {
	return &Session{identity: identity, subs: make(map[int]func(*Identity))}
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Session) Current() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}

// Subscribe registers fn and immediately delivers the current identity to
// it. The returned function removes the subscription.
func (s *Session) Subscribe(fn func(*Identity)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := copyIdentity(s.identity)
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignIn records identity and notifies subscribers.
func (s *Session) SignIn(identity Identity) {
	s.set(&identity)
}

// SignOut clears the identity and notifies subscribers.
func (s *Session) SignOut() {
	s.set(nil)
}

func (s *Session) set(identity *Identity) {
	s.mu.Lock()
	s.identity = copyIdentity(identity)
	subs := make([]func(*Identity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(copyIdentity(identity))
	}
}

func copyIdentity(identity *Identity) *Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
