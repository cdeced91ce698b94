package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EndpointConfig configures the token-endpoint transport.
type EndpointConfig struct {
	// TokenURL is the OAuth token endpoint.
	TokenURL string

	// RevokeURL is the token revocation endpoint. Optional; Revoke fails
	// if unset.
	RevokeURL string

	// ClientID identifies the application.
	ClientID string

	// ClientSecret authenticates the application. Resolve it from the
	// environment; never embed it in config files.
	ClientSecret string

	// HTTPClient is the HTTP client to use. If nil, a default client with
	// a 10 second timeout is used.
	HTTPClient *http.Client

	// DefaultLifetime is assumed when the endpoint returns no expires_in
	// and the access token carries no readable expiry. Default: 1 hour.
	DefaultLifetime time.Duration
}

// Endpoint performs the OAuth grant exchanges against the upstream's
// token endpoint.
type Endpoint struct {
	config     EndpointConfig
	httpClient *http.Client
}

// NewEndpoint creates a token-endpoint transport.
func NewEndpoint(config EndpointConfig) *Endpoint {
	// Apply defaults
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if config.DefaultLifetime <= 0 {
		config.DefaultLifetime = time.Hour
	}

	return &Endpoint{
		config:     config,
		httpClient: config.HTTPClient,
	}
}

// ClientCredentials performs the client_credentials grant and returns an
// app credential.
func (e *Endpoint) ClientCredentials(ctx context.Context) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", e.config.ClientID)
	form.Set("client_secret", e.config.ClientSecret)

	resp, err := e.exchange(ctx, form)
	if err != nil {
		return nil, err
	}
	return e.credential(KindApp, resp), nil
}

// RefreshGrant performs the refresh_token grant and returns a new user
// credential. A rejected refresh token (400/401/403) is terminal and
// surfaces as ErrReauthorizationRequired.
func (e *Endpoint) RefreshGrant(ctx context.Context, refreshToken string) (*Credential, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", e.config.ClientID)
	form.Set("client_secret", e.config.ClientSecret)

	resp, err := e.exchange(ctx, form)
	if err != nil {
		return nil, err
	}

	cred := e.credential(KindUser, resp)
	if cred.RefreshToken == "" {
		// Upstream did not rotate the refresh token; keep the old one.
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

// Revoke invalidates an access token at the revocation endpoint.
func (e *Endpoint) Revoke(ctx context.Context, accessToken string) error {
	if e.config.RevokeURL == "" {
		return fmt.Errorf("%w: no revocation endpoint configured", ErrExchangeFailed)
	}

	form := url.Values{}
	form.Set("client_id", e.config.ClientID)
	form.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: revoke status %d", ErrExchangeFailed, resp.StatusCode)
	}
	return nil
}

// grantResponse is the token endpoint's response body.
type grantResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	Scope        scopeList `json:"scope"`
}

// scopeList accepts both the array form and the space-separated string
// form of the scope field.
type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = nil
		return nil
	}
	*s = strings.Split(str, " ")
	return nil
}

func (e *Endpoint) exchange(ctx context.Context, form url.Values) (*grantResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		// The grant itself was rejected; retrying cannot succeed.
		if form.Get("grant_type") == "refresh_token" {
			return nil, fmt.Errorf("%w: status %d", ErrReauthorizationRequired, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var grant grantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrExchangeFailed, err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return &grant, nil
}

func (e *Endpoint) credential(kind Kind, grant *grantResponse) *Credential {
	expiresAt := time.Time{}
	switch {
	case grant.ExpiresIn > 0:
		expiresAt = time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	default:
		// Some issuers omit expires_in; fall back to the token's own exp
		// claim when it is a JWT, else assume the default lifetime.
		if exp, ok := expiryFromJWT(grant.AccessToken); ok {
			expiresAt = exp
		} else {
			expiresAt = time.Now().Add(e.config.DefaultLifetime)
		}
	}

	return &Credential{
		Kind:         kind,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    expiresAt,
		Scopes:       grant.Scope,
	}
}
