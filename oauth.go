package netatmo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// tokenEndpoint is the OAuth2 token endpoint, relative to the base URL.
	tokenEndpoint = "oauth2/token"

	// DefaultExpiryMargin is how long before expiry a token is considered
	// due for refresh.
	DefaultExpiryMargin = 30 * time.Second
)

// Default OAuth scopes.
const (
	ScopeReadStation     = "read_station"
	ScopeReadThermostat  = "read_thermostat"
	ScopeWriteThermostat = "write_thermostat"
	ScopeReadCamera      = "read_camera"
	ScopeAccessCamera    = "access_camera"
	ScopeReadPresence    = "read_presence"
	ScopeReadHomecoach   = "read_homecoach"
	ScopeReadMagellan    = "read_magellan"
	ScopeReadBubendorff  = "read_bubendorff"
	ScopeReadSmarther    = "read_smarther"
	ScopeReadDoorbell    = "read_doorbell"
	ScopeReadMX          = "read_mx"
)

// DefaultScopes returns the default OAuth scopes requested when none are
// configured.
func DefaultScopes() []string {
	return []string{ScopeReadStation}
}

// Credentials holds everything needed to obtain tokens. Immutable after
// construction: either Username/Password or RefreshToken must be set.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	Scopes       []string
}

// Token is an issued access token with its refresh token and absolute expiry.
// Tokens are replaced wholesale on refresh, never mutated field by field, so
// concurrent readers never observe a mix of old and new fields.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope,omitempty"`
}

// Valid reports whether the access token has at least margin left before
// expiry.
func (t *Token) Valid(margin time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return time.Now().Add(margin).Before(t.ExpiresAt)
}

// tokenResponse is the wire shape of the token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        any    `json:"scope,omitempty"` // string or array, backend-dependent
}

// exchangePassword performs the initial grant_type=password exchange.
func exchangePassword(ctx context.Context, httpClient *http.Client, baseURL string, creds Credentials) (*Token, error) {
	scopes := creds.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("client_id", creds.ClientID)
	data.Set("client_secret", creds.ClientSecret)
	data.Set("username", creds.Username)
	data.Set("password", creds.Password)
	data.Set("scope", strings.Join(scopes, " "))

	tok, err := doTokenRequest(ctx, httpClient, baseURL, data, ReasonInvalidCredentials)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// refreshTokens performs the grant_type=refresh_token exchange. The backend
// may invalidate the prior refresh token on each use, so callers must ensure
// at most one refresh is in flight at a time.
func refreshTokens(ctx context.Context, httpClient *http.Client, baseURL, clientID, clientSecret, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("refresh_token", refreshToken)

	return doTokenRequest(ctx, httpClient, baseURL, data, ReasonRefreshRejected)
}

// doTokenRequest posts form data to the token endpoint and parses the result.
// A rejected grant becomes an AuthError with the given reason; a transport
// failure becomes a NetworkError; an unparseable body becomes
// ErrUnexpectedResponse.
func doTokenRequest(ctx context.Context, httpClient *http.Client, baseURL string, data url.Values, reason AuthReason) (*Token, error) {
	endpoint := joinURL(baseURL, tokenEndpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "token request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "token response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, &AuthError{Reason: reason, Code: errResp.Error, Description: errResp.ErrorDescription}
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
			return nil, &AuthError{Reason: reason, Code: http.StatusText(resp.StatusCode)}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, wrapUnexpected("token response", body, err)
	}
	if tr.AccessToken == "" {
		return nil, wrapUnexpected("token response missing access_token", body, nil)
	}

	tok := &Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Scope:        flattenScope(tr.Scope),
	}
	// expires_in is relative seconds; convert to an absolute instant at
	// receipt time. A missing value leaves ExpiresAt zero, which reads as
	// already due for refresh.
	if tr.ExpiresIn > 0 {
		tok.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// flattenScope normalizes the backend's scope field, which is sometimes a
// space-separated string and sometimes an array.
func flattenScope(scope any) string {
	switch v := scope.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// joinURL joins a base URL and a relative endpoint path.
func joinURL(baseURL, endpoint string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}
