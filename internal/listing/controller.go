package listing

import (
	"context"
	"sync"

	"github.com/phillip-england/leavedesk/internal/notice"
)

type Loader[T any, F any] func(ctx context.Context, page int, filters F) (Page[T], error)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusExpired Status = "expired"
)

type View[T any, F any] struct {
	Page      int
	Filters   F
	Status    Status
	Result    Page[T]
	HasResult bool
}

// Controller holds one paginated, filterable list. Every fetch takes a
// fresh token and only the newest token may write the result, so a slow
// response for an old page or old filters never overwrites a newer one.
type Controller[T any, F comparable] struct {
	load    Loader[T, F]
	mutator *Mutator
	policy  *ExpiryPolicy
	notices notice.Notifier

	mu        sync.Mutex
	page      int
	filters   F
	issued    uint64
	status    Status
	result    Page[T]
	hasResult bool
}

func NewController[T any, F comparable](load Loader[T, F], initial F, policy *ExpiryPolicy, notices notice.Notifier) *Controller[T, F] {
	return &Controller[T, F]{
		load:    load,
		mutator: NewMutator(policy, notices),
		policy:  policy,
		notices: notices,
		page:    1,
		filters: initial,
		status:  StatusIdle,
	}
}

func (c *Controller[T, F]) Load(ctx context.Context) error {
	return c.fetch(ctx, nil)
}

func (c *Controller[T, F]) Refresh(ctx context.Context) error {
	return c.fetch(ctx, nil)
}

func (c *Controller[T, F]) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return c.fetch(ctx, func() { c.page = page })
}

// SetFilters always goes back to page 1.
func (c *Controller[T, F]) SetFilters(ctx context.Context, filters F) error {
	return c.fetch(ctx, func() {
		c.filters = filters
		c.page = 1
	})
}

// Navigate applies a page request carrying filters: changed filters win and
// reset paging, unchanged filters keep the requested page.
func (c *Controller[T, F]) Navigate(ctx context.Context, page int, filters F) error {
	c.mu.Lock()
	changed := filters != c.filters
	c.mu.Unlock()
	if changed {
		return c.SetFilters(ctx, filters)
	}
	return c.SetPage(ctx, page)
}

// Mutate runs fn and on success refetches the current page exactly once.
// A failed action leaves the list as it was.
func (c *Controller[T, F]) Mutate(ctx context.Context, action Action, fn func(ctx context.Context) error) error {
	if err := c.mutator.Do(ctx, action, fn); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller[T, F]) View() View[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View[T, F]{
		Page:      c.page,
		Filters:   c.filters,
		Status:    c.status,
		Result:    c.result,
		HasResult: c.hasResult,
	}
}

func (c *Controller[T, F]) fetch(ctx context.Context, update func()) error {
	c.mu.Lock()
	if update != nil {
		update()
	}
	c.issued++
	token := c.issued
	page, filters := c.page, c.filters
	c.status = StatusLoading
	c.mu.Unlock()

	result, err := c.load(ctx, page, filters)
	// A 401 ends the session even on a stale response, unless the session
	// has since moved to another credential.
	expired := err != nil && c.policy.Handle(err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.issued {
		return nil
	}
	switch {
	case expired:
		c.status = StatusExpired
		return ErrSessionExpired
	case err != nil:
		c.status = StatusFailed
		c.notices.Notify(notice.LoadFailed("Unable to load data. Try again."))
		return &LoadError{Err: err}
	}
	c.status = StatusReady
	c.result = result
	c.hasResult = true
	return nil
}
