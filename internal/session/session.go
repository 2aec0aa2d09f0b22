// Package session holds the credential of an authenticated console session
// and notifies subscribers when it changes.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Credential is the header triple the API issues per session. The three
// fields travel together or not at all.
type Credential struct {
	AccessToken string `json:"access_token"`
	Client      string `json:"client"`
	UID         string `json:"uid"`
}

func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.Client != "" && c.UID != ""
}

type Snapshot struct {
	Credential  Credential `json:"credential"`
	DisplayName string     `json:"display_name"`
}

type Reason string

const (
	ReasonLogout  Reason = "logout"
	ReasonExpired Reason = "expired"
)

type EventKind string

const (
	EventSet     EventKind = "set"
	EventRotated EventKind = "rotated"
	EventCleared EventKind = "cleared"
)

// Navigation is the command a Clear issues to whatever view is listening.
type Navigation struct {
	Path  string
	After time.Duration
}

type Event struct {
	Kind     EventKind
	Reason   Reason
	Navigate *Navigation
}

var ErrIncompleteCredential = errors.New("session: credential requires access token, client and uid")

// Backend persists a single snapshot.
type Backend interface {
	Load() (Snapshot, bool, error)
	Save(Snapshot) error
	Delete() error
}

type Options struct {
	LoginPath   string
	LogoutPath  string
	ExpiryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		LoginPath:   "/login",
		LogoutPath:  "/",
		ExpiryDelay: 3 * time.Second,
	}
}

type Store struct {
	backend Backend
	opts    Options

	mu      sync.RWMutex
	current Snapshot
	present bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func NewStore(backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		backend = &MemoryBackend{}
	}
	snap, ok, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s := &Store{backend: backend, opts: opts, subs: map[int]func(Event){}}
	if ok && snap.Credential.Complete() {
		s.current = snap
		s.present = true
	}
	return s, nil
}

func (s *Store) Get() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.present
}

// Credential returns the current triple when a complete one is held.
func (s *Store) Credential() (Credential, bool) {
	snap, ok := s.Get()
	if !ok {
		return Credential{}, false
	}
	return snap.Credential, true
}

func (s *Store) Set(snap Snapshot) error {
	if !snap.Credential.Complete() {
		return ErrIncompleteCredential
	}

	s.mu.Lock()
	if err := s.backend.Save(snap); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save session: %w", err)
	}
	s.current = snap
	s.present = true
	s.mu.Unlock()

	s.publish(Event{Kind: EventSet})
	return nil
}

// Rotate replaces the credential of a live session. Incomplete triples and
// rotations arriving after the session was cleared are ignored.
func (s *Store) Rotate(c Credential) error {
	if !c.Complete() {
		return nil
	}

	s.mu.Lock()
	if !s.present {
		s.mu.Unlock()
		return nil
	}
	if s.current.Credential == c {
		s.mu.Unlock()
		return nil
	}
	next := Snapshot{Credential: c, DisplayName: s.current.DisplayName}
	if err := s.backend.Save(next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save session: %w", err)
	}
	s.current = next
	s.mu.Unlock()

	s.publish(Event{Kind: EventRotated})
	return nil
}

// Clear drops the session and returns the navigation command published
// with the cleared event.
func (s *Store) Clear(reason Reason) (Navigation, error) {
	s.mu.Lock()
	err := s.backend.Delete()
	s.current = Snapshot{}
	s.present = false
	s.mu.Unlock()

	nav := s.navigationFor(reason)
	s.publish(Event{Kind: EventCleared, Reason: reason, Navigate: &nav})
	if err != nil {
		return nav, fmt.Errorf("delete session: %w", err)
	}
	return nav, nil
}

func (s *Store) navigationFor(reason Reason) Navigation {
	if reason == ReasonExpired {
		return Navigation{Path: s.opts.LoginPath, After: s.opts.ExpiryDelay}
	}
	return Navigation{Path: s.opts.LogoutPath}
}

// Subscribe registers fn for every later event. The returned func removes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
