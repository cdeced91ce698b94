package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/helixgate/cache"
)

// Exchanger performs the OAuth grant exchanges. Endpoint is the
// production implementation.
type Exchanger interface {
	ClientCredentials(ctx context.Context) (*Credential, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*Credential, error)
	Revoke(ctx context.Context, accessToken string) error
}

// ManagerConfig configures the token manager.
type ManagerConfig struct {
	// Exchanger performs grant exchanges. Required.
	Exchanger Exchanger

	// Store persists user token pairs. Required for user-token calls.
	Store Store

	// Cache persists the app token across restarts so a new process
	// adopts the live token instead of burning an exchange. Optional.
	Cache cache.Cache

	// Namespace prefixes the app-token cache key.
	// Default: "helixgate"
	Namespace string

	// ClientID keys the app token in the shared cache.
	ClientID string

	// RefreshMargin is how long before true expiry a token is treated as
	// expired. Default: 5 minutes
	RefreshMargin time.Duration
}

// Manager owns all credential state. It is the sole writer: callers
// receive credentials but never mutate them, and every refresh for a
// given credential key is single-flight.
type Manager struct {
	config ManagerConfig

	mu    sync.RWMutex
	app   *Credential
	users map[string]*Credential

	sf singleflight.Group
}

// NewManager creates a token manager.
func NewManager(config ManagerConfig) *Manager {
	// Apply defaults
	if config.Namespace == "" {
		config.Namespace = "helixgate"
	}
	if config.RefreshMargin <= 0 {
		config.RefreshMargin = 5 * time.Minute
	}

	return &Manager{
		config: config,
		users:  make(map[string]*Credential),
	}
}

// AppToken returns a valid application credential, exchanging
// client_credentials on first use and proactively refreshing inside the
// margin window.
func (m *Manager) AppToken(ctx context.Context) (*Credential, error) {
	m.mu.RLock()
	app := m.app
	m.mu.RUnlock()

	if app.Valid(m.config.RefreshMargin) {
		return app, nil
	}

	v, err, _ := m.sf.Do("app", func() (any, error) {
		// Another caller in this flight may have won already.
		m.mu.RLock()
		current := m.app
		m.mu.RUnlock()
		if current.Valid(m.config.RefreshMargin) {
			return current, nil
		}

		// A sibling process may hold a live token in the shared cache.
		if cred := m.loadAppFromCache(ctx); cred.Valid(m.config.RefreshMargin) {
			m.setApp(cred)
			return cred, nil
		}

		cred, err := m.config.Exchanger.ClientCredentials(ctx)
		if err != nil {
			return nil, err
		}
		m.persistApp(ctx, cred)
		m.setApp(cred)
		return cred, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

// UserToken returns a valid credential for userID, loading it from the
// store and refreshing it via the refresh_token grant when expired.
func (m *Manager) UserToken(ctx context.Context, userID string) (*Credential, error) {
	if m.config.Store == nil {
		return nil, ErrNoStore
	}

	m.mu.RLock()
	cred := m.users[userID]
	m.mu.RUnlock()

	if cred.Valid(m.config.RefreshMargin) {
		return cred, nil
	}

	v, err, _ := m.sf.Do("user:"+userID, func() (any, error) {
		m.mu.RLock()
		current := m.users[userID]
		m.mu.RUnlock()
		if current.Valid(m.config.RefreshMargin) {
			return current, nil
		}

		stored, err := m.config.Store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if stored.Valid(m.config.RefreshMargin) {
			m.setUser(userID, stored)
			return stored, nil
		}

		return m.refreshUserLocked(ctx, userID, stored)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

// Refresh replaces a credential that the upstream rejected. It is the
// reactive path for 401 responses: unlike the proactive paths it ignores
// the rejected token's nominal expiry, but if another caller has already
// refreshed past it the shared result is returned without a duplicate
// exchange.
func (m *Manager) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: nil credential", ErrNotFound)
	}

	switch cred.Kind {
	case KindUser:
		return m.refreshUser(ctx, cred)
	default:
		return m.refreshApp(ctx, cred)
	}
}

// Revoke invalidates a user's credential upstream and forgets it locally.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if m.config.Store == nil {
		return ErrNoStore
	}

	cred, err := m.config.Store.Load(ctx, userID)
	if err != nil {
		return err
	}

	if err := m.config.Exchanger.Revoke(ctx, cred.AccessToken); err != nil {
		return err
	}

	if err := m.config.Store.Delete(ctx, userID); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.users, userID)
	m.mu.Unlock()
	return nil
}

func (m *Manager) refreshApp(ctx context.Context, rejected *Credential) (*Credential, error) {
	v, err, _ := m.sf.Do("app", func() (any, error) {
		m.mu.RLock()
		current := m.app
		m.mu.RUnlock()

		// A concurrent refresh already replaced the rejected token.
		if current != nil && current.AccessToken != rejected.AccessToken &&
			current.Valid(m.config.RefreshMargin) {
			return current, nil
		}

		cred, err := m.config.Exchanger.ClientCredentials(ctx)
		if err != nil {
			return nil, err
		}
		m.persistApp(ctx, cred)
		m.setApp(cred)
		return cred, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

func (m *Manager) refreshUser(ctx context.Context, rejected *Credential) (*Credential, error) {
	userID := rejected.UserID()
	if userID == "" {
		return nil, fmt.Errorf("%w: user credential without owner", ErrNotFound)
	}

	v, err, _ := m.sf.Do("user:"+userID, func() (any, error) {
		m.mu.RLock()
		current := m.users[userID]
		m.mu.RUnlock()

		if current != nil && current.AccessToken != rejected.AccessToken &&
			current.Valid(m.config.RefreshMargin) {
			return current, nil
		}

		source := rejected
		if current != nil {
			source = current
		}
		return m.refreshUserLocked(ctx, userID, source)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credential), nil
}

// refreshUserLocked runs the refresh_token grant for userID and persists
// the result. Callers must hold the singleflight slot for the user key.
func (m *Manager) refreshUserLocked(ctx context.Context, userID string, source *Credential) (*Credential, error) {
	if source.RefreshToken == "" {
		return nil, fmt.Errorf("%w: user %s has no refresh token", ErrReauthorizationRequired, userID)
	}

	fresh, err := m.config.Exchanger.RefreshGrant(ctx, source.RefreshToken)
	if err != nil {
		return nil, err
	}
	fresh.owner = userID

	if m.config.Store != nil {
		if err := m.config.Store.Save(ctx, userID, fresh); err != nil {
			return nil, err
		}
	}
	m.setUser(userID, fresh)
	return fresh, nil
}

func (m *Manager) setApp(cred *Credential) {
	m.mu.Lock()
	m.app = cred
	m.mu.Unlock()
}

func (m *Manager) setUser(userID string, cred *Credential) {
	cred.owner = userID
	m.mu.Lock()
	m.users[userID] = cred
	m.mu.Unlock()
}

// storedAppToken is the shared-cache persistence shape for the app token.
// It is deliberately distinct from Credential, whose MarshalJSON redacts.
type storedAppToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Scopes      []string  `json:"scopes,omitempty"`
}

func (m *Manager) appCacheKey() string {
	return cache.Key(m.config.Namespace, "apptoken", m.config.ClientID)
}

func (m *Manager) loadAppFromCache(ctx context.Context) *Credential {
	if m.config.Cache == nil {
		return nil
	}

	data, ok := m.config.Cache.Get(ctx, m.appCacheKey())
	if !ok {
		return nil
	}

	var stored storedAppToken
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil
	}
	return &Credential{
		Kind:        KindApp,
		AccessToken: stored.AccessToken,
		ExpiresAt:   stored.ExpiresAt,
		Scopes:      stored.Scopes,
	}
}

func (m *Manager) persistApp(ctx context.Context, cred *Credential) {
	if m.config.Cache == nil {
		return
	}

	data, err := json.Marshal(storedAppToken{
		AccessToken: cred.AccessToken,
		ExpiresAt:   cred.ExpiresAt,
		Scopes:      cred.Scopes,
	})
	if err != nil {
		return
	}

	ttl := time.Until(cred.ExpiresAt)
	// Best effort: a cold cache only costs one extra exchange.
	_ = m.config.Cache.Set(ctx, m.appCacheKey(), data, ttl)
}

// IsTerminal reports whether err requires re-running the consent flow
// rather than retrying.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrReauthorizationRequired)
}
