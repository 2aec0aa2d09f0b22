// Package notice carries the user visible messages the console shows after
// loads and actions.
package notice

import "sync"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Code string

const (
	CodeLoading        Code = "loading"
	CodeLoadFailed     Code = "load-failed"
	CodeSessionExpired Code = "session-expired"

	CodeApproveFailed Code = "mutation-failed-approve"
	CodeRejectFailed  Code = "mutation-failed-reject"
	CodeDeleteFailed  Code = "mutation-failed-delete"
	CodeImportFailed  Code = "mutation-failed-import"
	CodeSubmitFailed  Code = "mutation-failed-submit"

	CodeApproved       Code = "approved"
	CodeRejected       Code = "rejected"
	CodeDeleted        Code = "deleted"
	CodeImported       Code = "imported"
	CodeSubmitted      Code = "submitted"
	CodeLeaderNotified Code = "leader-notified"
	CodeInvalidInput   Code = "invalid-input"
	CodeRegistered     Code = "registered"
)

type Notice struct {
	Code     Code
	Severity Severity
	Message  string
}

func (n Notice) IsError() bool { return n.Severity == SeverityError }

type Notifier interface {
	Notify(Notice)
}

func SessionExpired() Notice {
	return Notice{
		Code:     CodeSessionExpired,
		Severity: SeverityError,
		Message:  "Your session has expired. Please sign in again.",
	}
}

func LoadFailed(message string) Notice {
	return Notice{Code: CodeLoadFailed, Severity: SeverityError, Message: message}
}

// Board collects notices for one rendered view.
type Board struct {
	mu    sync.Mutex
	items []Notice
}

func (b *Board) Notify(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

func (b *Board) All() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Board) Count(code Code) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, item := range b.items {
		if item.Code == code {
			n++
		}
	}
	return n
}

// Drain returns the collected notices and empties the board.
func (b *Board) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}
