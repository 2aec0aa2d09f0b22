package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/session"
)

func newService(t *testing.T, h http.HandlerFunc) (*Service, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store, err := session.NewStore(&session.MemoryBackend{}, session.DefaultOptions())
	require.NoError(t, err)
	client := apiclient.New(srv.URL, srv.Client(), nil).WithCredentials(store)
	return NewService(client, store, nil), store
}

func TestLoginStoresCredentialFromHeaders(t *testing.T) {
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/sign_in", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ana@example.com", body["email"])
		require.Equal(t, "secret", body["password"])

		w.Header().Set("access-token", "tok")
		w.Header().Set("client", "cli")
		w.Header().Set("uid", "ana@example.com")
		_, _ = w.Write([]byte(`{"data":{"name":"Ana","email":"ana@example.com"}}`))
	})

	profile, err := svc.Login(context.Background(), " ana@example.com ", "secret")
	require.NoError(t, err)
	require.Equal(t, "Ana", profile.Name)

	snap, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, session.Credential{AccessToken: "tok", Client: "cli", UID: "ana@example.com"}, snap.Credential)
	require.Equal(t, "Ana", snap.DisplayName)
}

func TestLoginReadsTopLevelName(t *testing.T) {
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("access-token", "tok")
		w.Header().Set("client", "cli")
		w.Header().Set("uid", "u")
		_, _ = w.Write([]byte(`{"name":"Bob"}`))
	})
	_, err := svc.Login(context.Background(), "bob@example.com", "pw")
	require.NoError(t, err)
	snap, _ := store.Get()
	require.Equal(t, "Bob", snap.DisplayName)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":["Invalid password"]}`))
		},
		"missing headers": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"name":"Ana"}}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store := newService(t, h)
			_, err := svc.Login(context.Background(), "ana@example.com", "bad")
			require.ErrorIs(t, err, ErrAuthentication)
			_, ok := store.Get()
			require.False(t, ok)
		})
	}
}

func TestLoginValidatesBeforeCallingAPI(t *testing.T) {
	called := false
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	_, err := svc.Login(context.Background(), "not-an-email", "pw")
	require.ErrorIs(t, err, ErrAuthentication)
	require.False(t, called)
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth", r.URL.Path)
		w.Header().Set("access-token", "tok")
		w.Header().Set("client", "cli")
		w.Header().Set("uid", "u")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	require.NoError(t, svc.Register(context.Background(), "Ana", "ana@example.com", "secret"))
	_, ok := store.Get()
	require.False(t, ok)
}

func TestRegisterFailure(t *testing.T) {
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	require.ErrorIs(t, svc.Register(context.Background(), "Ana", "ana@example.com", "secret"), ErrRegistration)
	require.ErrorIs(t, svc.Register(context.Background(), "", "ana@example.com", "secret"), ErrRegistration)
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, store.Set(session.Snapshot{Credential: session.Credential{AccessToken: "a", Client: "b", UID: "c"}}))
	nav, err := svc.Logout()
	require.NoError(t, err)
	require.Equal(t, "/", nav.Path)
	_, ok := store.Get()
	require.False(t, ok)
}
