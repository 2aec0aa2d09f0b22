package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phillip-england/leavedesk/internal/session"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Method string
	Path   string
	Status int
	Body   []byte

	// Sent is the credential the request carried, empty for anonymous calls.
	Sent session.Credential
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// SentWith returns the credential a failed request carried.
func SentWith(err error) (session.Credential, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.Sent.Complete() {
		return session.Credential{}, false
	}
	return apiErr.Sent, true
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// ErrorMessage returns the message the API put in a failed response, or
// fallback when there is none (network failures included).
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	raw := strings.TrimSpace(string(apiErr.Body))
	if raw == "" {
		return fallback
	}

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		if strings.HasPrefix(raw, "<") {
			return fallback
		}
		return raw
	}
	for _, field := range []json.RawMessage{payload.Error, payload.Errors} {
		if msg := messageFrom(field); msg != "" {
			return msg
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	var devise struct {
		FullMessages []string `json:"full_messages"`
	}
	if err := json.Unmarshal(raw, &devise); err == nil && len(devise.FullMessages) > 0 {
		return strings.Join(devise.FullMessages, ", ")
	}
	return ""
}
