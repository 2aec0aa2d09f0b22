package listing

import (
	"errors"
	"fmt"

	"github.com/phillip-england/leavedesk/internal/notice"
)

var ErrSessionExpired = errors.New("session expired")

type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load failed: %v", e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
	ActionImport  Action = "import"
	ActionSubmit  Action = "submit"
)

type actionNotices struct {
	success notice.Notice
	failure notice.Notice
	// verbatim failures show the API's own message when it sent one.
	verbatim bool
}

var actions = map[Action]actionNotices{
	ActionApprove: {
		success: notice.Notice{Code: notice.CodeApproved, Severity: notice.SeveritySuccess, Message: "Request approved."},
		failure: notice.Notice{Code: notice.CodeApproveFailed, Severity: notice.SeverityError, Message: "Unable to approve the request."},
	},
	ActionReject: {
		success: notice.Notice{Code: notice.CodeRejected, Severity: notice.SeverityWarning, Message: "Request rejected."},
		failure: notice.Notice{Code: notice.CodeRejectFailed, Severity: notice.SeverityError, Message: "Unable to reject the request."},
	},
	ActionDelete: {
		success: notice.Notice{Code: notice.CodeDeleted, Severity: notice.SeverityInfo, Message: "Request deleted."},
		failure: notice.Notice{Code: notice.CodeDeleteFailed, Severity: notice.SeverityError, Message: "Unable to delete the request."},
	},
	ActionImport: {
		success:  notice.Notice{Code: notice.CodeImported, Severity: notice.SeveritySuccess, Message: "Import completed."},
		failure:  notice.Notice{Code: notice.CodeImportFailed, Severity: notice.SeverityError, Message: "Unable to import the file."},
		verbatim: true,
	},
	ActionSubmit: {
		success:  notice.Notice{Code: notice.CodeSubmitted, Severity: notice.SeveritySuccess, Message: "Leave request created."},
		failure:  notice.Notice{Code: notice.CodeSubmitFailed, Severity: notice.SeverityError, Message: "Unable to create the leave request."},
		verbatim: true,
	},
}

type MutationError struct {
	Action Action
	Err    error
}

func (e *MutationError) Error() string { return fmt.Sprintf("%s failed: %v", e.Action, e.Err) }

func (e *MutationError) Unwrap() error { return e.Err }
