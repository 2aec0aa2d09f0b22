package listing

import (
	"context"

	"go.uber.org/zap"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/notice"
	"github.com/phillip-england/leavedesk/internal/session"
)

type Clearer interface {
	Credential() (session.Credential, bool)
	Clear(session.Reason) (session.Navigation, error)
}

// ExpiryPolicy is the single reaction to a 401 from any call: drop the
// session and tell the user. The store's cleared event carries the delayed
// navigation back to the login page.
type ExpiryPolicy struct {
	store   Clearer
	notices notice.Notifier
	log     *zap.Logger
}

func NewExpiryPolicy(store Clearer, notices notice.Notifier, log *zap.Logger) *ExpiryPolicy {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExpiryPolicy{store: store, notices: notices, log: log}
}

// Handle reports whether err was an authorization failure it acted on. A 401
// for a credential the session no longer holds is left alone.
func (p *ExpiryPolicy) Handle(err error) bool {
	if p == nil || !apiclient.IsUnauthorized(err) {
		return false
	}
	if sent, ok := apiclient.SentWith(err); ok {
		if current, live := p.store.Credential(); live && current != sent {
			p.log.Debug("ignore 401 for superseded credential")
			return false
		}
	}
	if _, cerr := p.store.Clear(session.ReasonExpired); cerr != nil {
		p.log.Warn("clear expired session", zap.Error(cerr))
	}
	p.notices.Notify(notice.SessionExpired())
	return true
}

// Mutator runs one-off actions with the shared failure handling.
type Mutator struct {
	policy  *ExpiryPolicy
	notices notice.Notifier
}

func NewMutator(policy *ExpiryPolicy, notices notice.Notifier) *Mutator {
	return &Mutator{policy: policy, notices: notices}
}

func (m *Mutator) Do(ctx context.Context, action Action, fn func(ctx context.Context) error) error {
	texts := actions[action]
	if err := fn(ctx); err != nil {
		if m.policy.Handle(err) {
			return ErrSessionExpired
		}
		failure := texts.failure
		if texts.verbatim {
			failure.Message = apiclient.ErrorMessage(err, failure.Message)
		}
		m.notices.Notify(failure)
		return &MutationError{Action: action, Err: err}
	}
	m.notices.Notify(texts.success)
	return nil
}
