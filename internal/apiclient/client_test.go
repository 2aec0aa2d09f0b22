package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phillip-england/leavedesk/internal/requestctx"
	"github.com/phillip-england/leavedesk/internal/session"
)

func newStore(t *testing.T, snap *session.Snapshot) *session.Store {
	t.Helper()
	s, err := session.NewStore(&session.MemoryBackend{}, session.DefaultOptions())
	require.NoError(t, err)
	if snap != nil {
		require.NoError(t, s.Set(*snap))
	}
	return s
}

func TestSendAttachesCompleteCredential(t *testing.T) {
	var got http.Header
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := newStore(t, &session.Snapshot{Credential: session.Credential{AccessToken: "tok", Client: "cli", UID: "a@b.c"}})
	client := New(srv.URL+"/", srv.Client(), nil).WithCredentials(store)

	ctx := requestctx.WithRequestID(context.Background(), "req-1")
	_, err := client.Send(ctx, Request{Method: http.MethodGet, Path: "/api/v1/users", Query: url.Values{"page": {"2"}}})
	require.NoError(t, err)
	require.Equal(t, "tok", got.Get(HeaderAccessToken))
	require.Equal(t, "cli", got.Get(HeaderClient))
	require.Equal(t, "a@b.c", got.Get(HeaderUID))
	require.Equal(t, "application/json", got.Get("Accept"))
	require.Equal(t, "req-1", got.Get(HeaderRequestID))
	require.Equal(t, "2", gotQuery.Get("page"))
}

func TestSendWithoutSessionIsUnauthenticated(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client(), nil).WithCredentials(newStore(t, nil))
	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	require.Empty(t, got.Get(HeaderAccessToken))
	require.Empty(t, got.Get(HeaderClient))
	require.Empty(t, got.Get(HeaderUID))
	require.NotEmpty(t, got.Get(HeaderRequestID))
}

func TestSendRotatesOnlyCompleteTriple(t *testing.T) {
	partial := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderAccessToken, "new-tok")
		if !partial {
			w.Header().Set(HeaderClient, "new-cli")
			w.Header().Set(HeaderUID, "a@b.c")
		}
	}))
	defer srv.Close()

	old := session.Credential{AccessToken: "tok", Client: "cli", UID: "a@b.c"}
	store := newStore(t, &session.Snapshot{Credential: old, DisplayName: "Ana"})
	client := New(srv.URL, srv.Client(), nil).WithCredentials(store)

	resp, err := client.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	require.False(t, resp.Rotated)
	c, _ := store.Credential()
	require.Equal(t, old, c)

	partial = false
	resp, err = client.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	require.True(t, resp.Rotated)
	want := session.Credential{AccessToken: "new-tok", Client: "new-cli", UID: "a@b.c"}
	require.Equal(t, want, resp.Credential)
	snap, _ := store.Get()
	require.Equal(t, want, snap.Credential)
	require.Equal(t, "Ana", snap.DisplayName)
}

func TestSendReturnsTypedErrorAndLeavesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["You need to sign in"]}`))
	}))
	defer srv.Close()

	store := newStore(t, &session.Snapshot{Credential: session.Credential{AccessToken: "tok", Client: "cli", UID: "u"}})
	client := New(srv.URL, srv.Client(), nil).WithCredentials(store)

	_, err := client.Send(context.Background(), Request{Method: http.MethodDelete, Path: "/api/v1/leave_requests/7"})
	require.Error(t, err)
	require.True(t, IsUnauthorized(err))
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "You need to sign in", ErrorMessage(err, "fallback"))

	_, ok := store.Get()
	require.True(t, ok, "transport must not clear the session")
}

func TestSendEncodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, srv.Client(), nil).Send(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth",
		JSON:   map[string]string{"name": "Ana"},
	})
	require.NoError(t, err)
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.Decode(&out))
	require.True(t, out.OK)
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"network", errors.New("dial tcp: refused"), "fallback"},
		{"empty body", &Error{Status: 500}, "fallback"},
		{"error string", &Error{Status: 422, Body: []byte(`{"error":"Overlapping dates"}`)}, "Overlapping dates"},
		{"message", &Error{Status: 422, Body: []byte(`{"message":"Bad file"}`)}, "Bad file"},
		{"devise", &Error{Status: 422, Body: []byte(`{"errors":{"full_messages":["Email taken"]}}`)}, "Email taken"},
		{"plain text", &Error{Status: 400, Body: []byte("Row 3 is invalid")}, "Row 3 is invalid"},
		{"html", &Error{Status: 502, Body: []byte("<html>bad gateway</html>")}, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ErrorMessage(tc.err, "fallback"))
		})
	}
}

func TestErrorRecordsSentCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cred := session.Credential{AccessToken: "tok", Client: "cli", UID: "a@b.c"}
	client := New(srv.URL, srv.Client(), nil).WithCredentials(newStore(t, &session.Snapshot{Credential: cred}))
	_, err := client.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.True(t, IsUnauthorized(err))
	sent, ok := SentWith(err)
	require.True(t, ok)
	require.Equal(t, cred, sent)

	anon := New(srv.URL, srv.Client(), nil)
	_, err = anon.Send(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	_, ok = SentWith(err)
	require.False(t, ok)
}
