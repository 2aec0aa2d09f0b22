package session

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/phillip-england/leavedesk/internal/security"
)

var ErrInvalidID = errors.New("session: invalid id")

// Registry hands out one Store per browser, keyed by the opaque id kept in
// the browser's cookie. With an empty dir the stores live in memory only.
type Registry struct {
	dir    string
	sealer *security.Sealer
	opts   Options

	mu     sync.Mutex
	stores map[string]*Store
	onOpen []func(id string, s *Store)
}

func NewRegistry(dir string, sealer *security.Sealer, opts Options) *Registry {
	return &Registry{
		dir:    dir,
		sealer: sealer,
		opts:   opts,
		stores: map[string]*Store{},
	}
}

func (r *Registry) NewID() string {
	return uuid.NewString()
}

// OnOpen registers a hook run once for every store the registry creates.
func (r *Registry) OnOpen(fn func(id string, s *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onOpen = append(r.onOpen, fn)
}

func (r *Registry) Open(id string) (*Store, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	id = parsed.String()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[id]; ok {
		return s, nil
	}

	var backend Backend = &MemoryBackend{}
	if r.dir != "" {
		backend = FileBackend{Path: filepath.Join(r.dir, id+".json"), Sealer: r.sealer}
	}
	s, err := NewStore(backend, r.opts)
	if err != nil {
		return nil, err
	}
	r.stores[id] = s
	for _, fn := range r.onOpen {
		fn(id, s)
	}
	return s, nil
}

// Lookup returns an already opened store without creating one.
func (r *Registry) Lookup(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	return s, ok
}

func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, id)
}
