package netatmo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExchangePassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			t.Errorf("Expected path /oauth2/token, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		want := map[string]string{
			"grant_type":    "password",
			"client_id":     "cid",
			"client_secret": "csecret",
			"username":      "user@example.com",
			"password":      "hunter2",
			"scope":         "read_station read_thermostat",
		}
		for key, value := range want {
			if got := r.PostFormValue(key); got != value {
				t.Errorf("Form field %s = %q, want %q", key, got, value)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,"scope":["read_station","read_thermostat"]}`))
	}))
	defer server.Close()

	creds := Credentials{
		ClientID:     "cid",
		ClientSecret: "csecret",
		Username:     "user@example.com",
		Password:     "hunter2",
		Scopes:       []string{ScopeReadStation, ScopeReadThermostat},
	}
	tok, err := exchangePassword(context.Background(), server.Client(), server.URL, creds)
	if err != nil {
		t.Fatalf("exchangePassword failed: %v", err)
	}
	if tok.AccessToken != "at-1" {
		t.Errorf("AccessToken = %q, want at-1", tok.AccessToken)
	}
	if tok.RefreshToken != "rt-1" {
		t.Errorf("RefreshToken = %q, want rt-1", tok.RefreshToken)
	}
	if tok.Scope != "read_station read_thermostat" {
		t.Errorf("Scope = %q, want flattened scope list", tok.Scope)
	}
	if remaining := time.Until(tok.ExpiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("ExpiresAt %v from now, want about an hour", remaining)
	}
}

func TestExchangePasswordDefaultScopes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostFormValue("scope"); got != ScopeReadStation {
			t.Errorf("scope = %q, want default %q", got, ScopeReadStation)
		}
		w.Write([]byte(`{"access_token":"at","expires_in":3600}`))
	}))
	defer server.Close()

	_, err := exchangePassword(context.Background(), server.Client(), server.URL, Credentials{
		ClientID: "cid", ClientSecret: "cs", Username: "u", Password: "p",
	})
	if err != nil {
		t.Fatalf("exchangePassword failed: %v", err)
	}
}

func TestRefreshTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostFormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		if got := r.PostFormValue("refresh_token"); got != "rt-old" {
			t.Errorf("refresh_token = %q, want rt-old", got)
		}
		w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-new","expires_in":10800,"scope":"read_station"}`))
	}))
	defer server.Close()

	tok, err := refreshTokens(context.Background(), server.Client(), server.URL, "cid", "cs", "rt-old")
	if err != nil {
		t.Fatalf("refreshTokens failed: %v", err)
	}
	if tok.RefreshToken != "rt-new" {
		t.Errorf("RefreshToken = %q, want the rotated rt-new", tok.RefreshToken)
	}
}

func TestTokenRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "rejected grant with oauth body",
			statusCode: 400,
			body:       `{"error":"invalid_grant","error_description":"refresh token expired"}`,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("Expected AuthError, got %T: %v", err, err)
				}
				if authErr.Code != "invalid_grant" {
					t.Errorf("Code = %q, want invalid_grant", authErr.Code)
				}
				if authErr.Description != "refresh token expired" {
					t.Errorf("Description = %q", authErr.Description)
				}
			},
		},
		{
			name:       "unauthorized without body",
			statusCode: 401,
			body:       ``,
			check: func(t *testing.T, err error) {
				if !IsAuthError(err) {
					t.Errorf("Expected auth error, got %v", err)
				}
			},
		},
		{
			name:       "server error",
			statusCode: 500,
			body:       `upstream exploded`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("Expected APIError, got %T: %v", err, err)
				}
				if apiErr.StatusCode != 500 {
					t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
				}
				if !IsRetryable(err) {
					t.Error("5xx token errors should be retryable")
				}
			},
		},
		{
			name:       "missing access token",
			statusCode: 200,
			body:       `{"refresh_token":"rt"}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnexpectedResponse) {
					t.Errorf("Expected ErrUnexpectedResponse, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := refreshTokens(context.Background(), server.Client(), server.URL, "cid", "cs", "rt")
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestTokenRequestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := refreshTokens(context.Background(), http.DefaultClient, server.URL, "cid", "cs", "rt")
	if !IsNetworkError(err) {
		t.Errorf("Expected NetworkError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("Network errors should be retryable")
	}
}

func TestTokenValid(t *testing.T) {
	tests := []struct {
		name   string
		token  *Token
		margin time.Duration
		want   bool
	}{
		{"nil token", nil, 0, false},
		{"empty access token", &Token{ExpiresAt: time.Now().Add(time.Hour)}, 0, false},
		{"fresh token", &Token{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)}, 30 * time.Second, true},
		{"expired token", &Token{AccessToken: "at", ExpiresAt: time.Now().Add(-time.Minute)}, 0, false},
		{"inside margin", &Token{AccessToken: "at", ExpiresAt: time.Now().Add(10 * time.Second)}, 30 * time.Second, false},
		{"no expiry reported", &Token{AccessToken: "at"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Valid(tt.margin); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.margin, got, tt.want)
			}
		})
	}
}

func TestFlattenScope(t *testing.T) {
	if got := flattenScope("a b"); got != "a b" {
		t.Errorf("flattenScope(string) = %q", got)
	}
	if got := flattenScope([]any{"a", "b"}); got != "a b" {
		t.Errorf("flattenScope(array) = %q", got)
	}
	if got := flattenScope(nil); got != "" {
		t.Errorf("flattenScope(nil) = %q", got)
	}
}
