package clubio

import (
	"context"
	"sync"
)

// SessionState is the lifecycle position of the current session
type SessionState = string

const (
	// StateUnresolved means no attempt was made yet to validate a stored token
	StateUnresolved SessionState = "unresolved"
	// StateResolving means a current-user lookup is in flight
	StateResolving SessionState = "resolving"
	// StateAuthenticated means a valid identity is held
	StateAuthenticated SessionState = "authenticated"
	// StateAnonymous means no token, or token resolution failed
	StateAnonymous SessionState = "anonymous"
)

// SessionObserver is notified after every settled state change. Observers
// run outside the manager's lock and must not call back into mutating
// operations synchronously.
type SessionObserver func(state SessionState, user *User)

// Manager owns "who is currently logged in", derived from the TokenStore
// and the Client. All mutations go through Start, Login, Logout and the
// register operations; everything else only reads.
type Manager struct {
	mu          sync.RWMutex
	client      *Client
	logger      Logger
	prefs       PreferenceStore
	state       SessionState
	user        *User
	generation  uint64
	observers   []SessionObserver
	transitions map[SessionState]map[SessionState]struct{}
}

type ManagerOption func(*Manager)

func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSessionObserver registers a callback fired on every state change.
func WithSessionObserver(obs SessionObserver) ManagerOption {
	return func(m *Manager) {
		if obs != nil {
			m.observers = append(m.observers, obs)
		}
	}
}

// WithPreferenceStore records the portal selection on login attempts.
func WithPreferenceStore(prefs PreferenceStore) ManagerOption {
	return func(m *Manager) {
		m.prefs = prefs
	}
}

// NewManager returns a Manager in the Unresolved state.
func NewManager(client *Client, opts ...ManagerOption) *Manager {
	m := &Manager{
		client: client,
		logger: defLogger{},
		state:  StateUnresolved,
		transitions: map[SessionState]map[SessionState]struct{}{
			StateUnresolved: {
				StateResolving: {},
			},
			StateResolving: {
				StateAuthenticated: {},
				StateAnonymous:     {},
			},
			StateAuthenticated: {
				StateResolving: {},
				StateAnonymous: {},
			},
			StateAnonymous: {
				StateResolving: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start validates any stored token against the backend, exactly once.
// With no stored token it settles Anonymous without issuing a request.
// A token that is provably expired (JWT exp in the past) is cleared and
// also skips the network. Anything else goes through the current-user
// lookup; an explicit failure clears the stored token.
func (m *Manager) Start(ctx context.Context) {
	gen, ok := m.beginResolve(StateUnresolved)
	if !ok {
		m.logger.Warn("session start ignored: already resolved")
		return
	}

	token := m.client.TokenStore().Get()
	if token == "" {
		m.settle(gen, StateAnonymous, nil)
		return
	}

	if TokenExpired(token) {
		m.logger.Info("stored token expired, skipping lookup", "subject", TokenSubject(token))
		m.clearToken()
		m.settle(gen, StateAnonymous, nil)
		return
	}

	m.resolveIdentity(ctx, gen)
}

// Login exchanges credentials and re-resolves the identity from the
// backend rather than trusting a client-synthesized record. The exchanged
// token is persisted before the current-user lookup is dispatched. Returns
// false on any failure; never returns an error upward.
func (m *Manager) Login(ctx context.Context, email, password string, userType UserType) bool {
	if !ValidUserType(userType) {
		m.logger.Warn("login rejected: unknown user type", "user_type", userType)
		return false
	}

	if m.prefs != nil {
		if err := m.prefs.SetPortalType(userType); err != nil {
			m.logger.Warn("unable to record portal selection", "error", err)
		}
	}

	gen, ok := m.beginResolve(m.State())
	if !ok {
		return false
	}

	// Client.Login persists the token to the store on success, so the
	// lookup below can already attach it.
	res := m.client.Login(ctx, email, password)
	if !res.OK() {
		m.logger.Info("login failed", "error", res.Error)
		m.settle(gen, StateAnonymous, nil)
		return false
	}

	return m.resolveIdentity(ctx, gen)
}

// Logout clears the identity and the stored token synchronously and
// unconditionally. It always succeeds and invalidates in-flight lookups.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.generation++
	from := m.state
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	m.clearToken()

	if from != StateAnonymous {
		m.notify(StateAnonymous, nil)
	}
}

// RegisterPerson creates a person account without touching session state.
func (m *Manager) RegisterPerson(ctx context.Context, req RegisterPersonRequest) bool {
	res := m.client.RegisterPerson(ctx, req)
	if !res.OK() {
		m.logger.Info("person registration failed", "error", res.Error)
	}
	return res.OK()
}

// RegisterClub creates a club account without touching session state.
func (m *Manager) RegisterClub(ctx context.Context, req RegisterClubRequest) bool {
	res := m.client.RegisterClub(ctx, req)
	if !res.OK() {
		m.logger.Info("club registration failed", "error", res.Error)
	}
	return res.OK()
}

// State returns the current lifecycle position.
func (m *Manager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the resolved identity, nil when anonymous or unsettled.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// IsLoading reports whether the session has not settled yet.
func (m *Manager) IsLoading() bool {
	state := m.State()
	return state == StateUnresolved || state == StateResolving
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// resolveIdentity runs the current-user lookup and settles. An explicit
// failure clears the stored token; a superseded generation changes nothing.
func (m *Manager) resolveIdentity(ctx context.Context, gen uint64) bool {
	res := m.client.CurrentUser(ctx)
	if !res.OK() {
		m.logger.Info("identity resolution failed", "error", res.Error)
		m.clearToken()
		m.settle(gen, StateAnonymous, nil)
		return false
	}

	return m.settle(gen, StateAuthenticated, res.Data)
}

// beginResolve transitions into Resolving and returns the generation the
// caller must present back to settle. Fails when the transition is not
// allowed from the expected state.
func (m *Manager) beginResolve(from SessionState) (uint64, bool) {
	m.mu.Lock()

	if m.state != from || !m.canTransition(m.state, StateResolving) {
		state := m.state
		m.mu.Unlock()
		m.logger.Warn("invalid session transition", "from", state, "to", StateResolving)
		return 0, false
	}

	m.generation++
	gen := m.generation
	m.state = StateResolving
	m.mu.Unlock()

	m.notify(StateResolving, nil)
	return gen, true
}

// settle applies a terminal state for one resolution flow. Results from a
// superseded flow (logout or a newer login happened meanwhile) are
// discarded so stale lookups never clobber newer state.
func (m *Manager) settle(gen uint64, to SessionState, user *User) bool {
	m.mu.Lock()

	if gen != m.generation {
		m.mu.Unlock()
		m.logger.Debug("discarding stale session resolution", "state", to)
		return false
	}

	if !m.canTransition(m.state, to) {
		from := m.state
		m.mu.Unlock()
		m.logger.Error("invalid session transition", "from", from, "to", to)
		return false
	}

	m.state = to
	m.user = user
	m.mu.Unlock()

	m.notify(to, user)
	return to == StateAuthenticated
}

func (m *Manager) canTransition(from, to SessionState) bool {
	if from == to {
		return true
	}
	if allowed, ok := m.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (m *Manager) clearToken() {
	if err := m.client.TokenStore().Clear(); err != nil {
		m.logger.Error("unable to clear stored token", "error", err)
	}
}

func (m *Manager) notify(state SessionState, user *User) {
	m.mu.RLock()
	observers := make([]SessionObserver, len(m.observers))
	copy(observers, m.observers)
	m.mu.RUnlock()

	for _, obs := range observers {
		obs(state, user)
	}
}
