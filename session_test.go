package clubio_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clubio "github.com/clubio/go-clubio"
)

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func sessionBackend(t *testing.T, requests *int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			atomic.AddInt32(requests, 1)
		}

		switch r.URL.Path {
		case "/auth/login/":
			require.NoError(t, r.ParseForm())
			if r.PostFormValue("password") != "hunter22" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, clubio.LoginResponse{AccessToken: "session-tok"})
		case "/auth/current_user/":
			auth := r.Header.Get("Authorization")
			if auth == "" || auth == "Bearer revoked" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, clubio.User{
				ID:       1,
				Email:    "sam@example.com",
				UserType: clubio.UserTypePerson,
				Person:   &clubio.PersonProfile{FirstName: "Sam", LastName: "Lee"},
			})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		}
	})
}

func TestStartWithoutTokenIsAnonymousWithoutRequests(t *testing.T) {
	var requests int32
	client, _ := newTestClient(t, sessionBackend(t, &requests))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
	assert.False(t, session.IsLoading())
	assert.EqualValues(t, 0, atomic.LoadInt32(&requests))
}

func TestStartWithOpaqueTokenResolvesIdentity(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))
	require.NoError(t, store.Set("abc123"))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	require.Equal(t, clubio.StateAuthenticated, session.State())
	require.NotNil(t, session.User())
	assert.Equal(t, "sam@example.com", session.User().Email)
	assert.True(t, session.IsAuthenticated())
}

func TestStartWithExpiredTokenSkipsNetwork(t *testing.T) {
	var requests int32
	client, store := newTestClient(t, sessionBackend(t, &requests))
	require.NoError(t, store.Set(signedJWT(t, time.Now().Add(-time.Hour))))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Empty(t, store.Get())
	assert.EqualValues(t, 0, atomic.LoadInt32(&requests))
}

func TestStartWithRevokedTokenClearsStore(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))
	require.NoError(t, store.Set("revoked"))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
	assert.Empty(t, store.Get())
}

func TestStartOnlyRunsOnce(t *testing.T) {
	client, _ := newTestClient(t, sessionBackend(t, nil))

	session := clubio.NewManager(client)
	session.Start(context.Background())
	session.Start(context.Background())

	assert.Equal(t, clubio.StateAnonymous, session.State())
}

func TestLoginSuccess(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	ok := session.Login(context.Background(), "sam@example.com", "hunter22", clubio.UserTypePerson)
	require.True(t, ok)
	assert.Equal(t, clubio.StateAuthenticated, session.State())
	require.NotNil(t, session.User())
	assert.Equal(t, "Sam Lee", session.User().DisplayName())
	assert.Equal(t, "session-tok", store.Get())
}

func TestLoginAttachesFreshTokenToIdentityLookup(t *testing.T) {
	var lookupAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login/":
			writeJSON(w, http.StatusOK, clubio.LoginResponse{AccessToken: "fresh-tok"})
		case "/auth/current_user/":
			lookupAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, clubio.User{
				ID: 1, Email: "sam@example.com", UserType: clubio.UserTypePerson,
			})
		}
	})

	client, _ := newTestClient(t, handler)
	session := clubio.NewManager(client)
	session.Start(context.Background())

	require.True(t, session.Login(context.Background(), "sam@example.com", "hunter22", clubio.UserTypePerson))
	assert.Equal(t, "Bearer fresh-tok", lookupAuth)
}

func TestLoginFailureSettlesAnonymous(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	ok := session.Login(context.Background(), "sam@example.com", "wrong", clubio.UserTypePerson)
	assert.False(t, ok)
	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
	assert.Empty(t, store.Get())
}

func TestLoginRejectsUnknownUserType(t *testing.T) {
	var requests int32
	client, _ := newTestClient(t, sessionBackend(t, &requests))

	session := clubio.NewManager(client)
	session.Start(context.Background())

	assert.False(t, session.Login(context.Background(), "sam@example.com", "hunter22", "ADMIN"))
	assert.EqualValues(t, 0, atomic.LoadInt32(&requests))
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))
	require.NoError(t, store.Set("abc123"))

	session := clubio.NewManager(client)
	session.Start(context.Background())
	require.True(t, session.IsAuthenticated())

	session.Logout()

	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
	assert.Empty(t, store.Get())
}

func TestLogoutInvalidatesInFlightResolution(t *testing.T) {
	reached := make(chan struct{})
	release := make(chan struct{})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login/":
			writeJSON(w, http.StatusOK, clubio.LoginResponse{AccessToken: "slow-tok"})
		case "/auth/current_user/":
			close(reached)
			<-release
			writeJSON(w, http.StatusOK, clubio.User{
				ID: 1, Email: "sam@example.com", UserType: clubio.UserTypePerson,
			})
		}
	})

	client, _ := newTestClient(t, handler)
	session := clubio.NewManager(client)
	session.Start(context.Background())

	done := make(chan bool, 1)
	go func() {
		done <- session.Login(context.Background(), "sam@example.com", "hunter22", clubio.UserTypePerson)
	}()

	<-reached
	session.Logout()
	close(release)

	assert.False(t, <-done)
	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
}

func TestObserverSeesLifecycle(t *testing.T) {
	client, store := newTestClient(t, sessionBackend(t, nil))
	require.NoError(t, store.Set("abc123"))

	var mu sync.Mutex
	var states []clubio.SessionState

	session := clubio.NewManager(client,
		clubio.WithSessionObserver(func(state clubio.SessionState, _ *clubio.User) {
			mu.Lock()
			states = append(states, state)
			mu.Unlock()
		}),
	)

	session.Start(context.Background())
	session.Logout()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []clubio.SessionState{
		clubio.StateResolving,
		clubio.StateAuthenticated,
		clubio.StateAnonymous,
	}, states)
}

type memPrefs struct {
	mu     sync.Mutex
	portal clubio.UserType
}

func (p *memPrefs) PortalType() clubio.UserType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.portal
}

func (p *memPrefs) SetPortalType(t clubio.UserType) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.portal = t
	return nil
}

func TestLoginRecordsPortalSelection(t *testing.T) {
	client, _ := newTestClient(t, sessionBackend(t, nil))
	prefs := &memPrefs{}

	session := clubio.NewManager(client, clubio.WithPreferenceStore(prefs))
	session.Start(context.Background())

	// The selection is recorded even when the credentials are wrong, so the
	// login form remembers the portal on the next attempt.
	session.Login(context.Background(), "sam@example.com", "wrong", clubio.UserTypeClub)
	assert.Equal(t, clubio.UserTypeClub, prefs.PortalType())
}

func TestRegisterPersonLeavesSessionUntouched(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register/person/", r.URL.Path)
		writeJSON(w, http.StatusOK, clubio.User{
			ID: 5, Email: "new@example.com", UserType: clubio.UserTypePerson,
		})
	})

	client, _ := newTestClient(t, handler)
	session := clubio.NewManager(client)
	session.Start(context.Background())

	ok := session.RegisterPerson(context.Background(), clubio.RegisterPersonRequest{
		User:   clubio.AccountPayload{Email: "new@example.com", Password: "hunter2222"},
		Person: clubio.PersonPayload{FirstName: "New", LastName: "Person"},
	})

	assert.True(t, ok)
	assert.Equal(t, clubio.StateAnonymous, session.State())
	assert.Nil(t, session.User())
}
