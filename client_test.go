package netatmo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)
	client, err := NewClient(StaticToken("test-token"), opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientNilAuth(t *testing.T) {
	_, err := NewClient(nil)
	if !errors.Is(err, ErrNilAuth) {
		t.Errorf("Expected ErrNilAuth, got %v", err)
	}
}

func TestClientBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want Bearer test-token", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Write([]byte(`{"status":"ok","body":{"homes":[]}}`))
	})

	if _, err := client.GetHomesData(context.Background()); err != nil {
		t.Fatalf("GetHomesData failed: %v", err)
	}
}

func TestClientUserPrefix(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/syncapi/v1/api/homesdata" {
			t.Errorf("Path = %q, want the user prefix inserted", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok","body":{"homes":[]}}`))
	}, WithUserPrefix("syncapi/v1"))

	if _, err := client.GetHomesData(context.Background()); err != nil {
		t.Fatalf("GetHomesData failed: %v", err)
	}
}

func TestWithTimeoutOrderIndependent(t *testing.T) {
	custom := &http.Client{}

	first, err := NewClient(StaticToken("t"), WithTimeout(5*time.Second), WithHTTPClient(custom))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if first.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v when WithTimeout comes first, want 5s", first.httpClient.Timeout)
	}

	second, err := NewClient(StaticToken("t"), WithHTTPClient(&http.Client{}), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if second.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v when WithTimeout comes last, want 5s", second.httpClient.Timeout)
	}
}

func TestClientTokenSourceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request should be sent when the token source fails")
	}))
	defer server.Close()

	session := NewAuthSession(Credentials{ClientID: "cid", ClientSecret: "cs"})
	client, err := NewClient(session, WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	_, err = client.GetHomesData(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "unauthorized",
			statusCode: 401,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnauthorized) {
					t.Errorf("Expected ErrUnauthorized, got %v", err)
				}
			},
		},
		{
			name:       "forbidden",
			statusCode: 403,
			check: func(t *testing.T, err error) {
				if !IsUnauthorized(err) {
					t.Errorf("Expected unauthorized, got %v", err)
				}
			},
		},
		{
			name:       "not found",
			statusCode: 404,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:       "rate limited",
			statusCode: 429,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRateLimited) {
					t.Errorf("Expected ErrRateLimited, got %v", err)
				}
				if !IsRetryable(err) {
					t.Error("Rate limits should be retryable")
				}
			},
		},
		{
			name:       "api error with body",
			statusCode: 500,
			body:       `{"error":{"code":21,"message":"Invalid access token"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("Expected APIError, got %T: %v", err, err)
				}
				if apiErr.Code != 21 || apiErr.Message != "Invalid access token" {
					t.Errorf("APIError = %+v", apiErr)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})
			_, err := client.GetHomesData(context.Background())
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestClientRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"internal"}}`))
			return
		}
		w.Write([]byte(`{"status":"ok","body":{"homes":[]}}`))
	}, WithRetry(&RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}))

	if _, err := client.GetHomesData(context.Background()); err != nil {
		t.Fatalf("Expected the third attempt to succeed, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("Server saw %d requests, want 3", n)
	}
}

func TestClientNoRetryOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, WithRetry(DefaultRetryConfig()))

	_, err := client.GetHomesData(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("Server saw %d requests, want 1 (no retry on 401)", n)
	}
}

func TestExtractBody(t *testing.T) {
	body, err := extractBody([]byte(`{"status":"ok","body":{"homes":[]}}`))
	if err != nil {
		t.Fatalf("extractBody failed: %v", err)
	}
	if string(body) != `{"homes":[]}` {
		t.Errorf("body = %s", body)
	}

	if _, err := extractBody([]byte(`{"status":"ok"}`)); !IsMalformedCatalog(err) {
		t.Errorf("Expected malformed catalog for missing body, got %v", err)
	}
	if _, err := extractBody([]byte(`not json`)); !IsMalformedCatalog(err) {
		t.Errorf("Expected malformed catalog for junk, got %v", err)
	}
}

func TestCheckAPIStatus(t *testing.T) {
	if err := checkAPIStatus([]byte(`{"status":"ok"}`)); err != nil {
		t.Errorf("Expected ok, got %v", err)
	}
	if err := checkAPIStatus([]byte(`{"status":"error"}`)); !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("Expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestClientFormEncoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded;charset=UTF-8" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := r.PostFormValue("home_id"); got != "h1" {
			t.Errorf("home_id = %q, want h1", got)
		}
		w.Write([]byte(`{"status":"ok","body":{"home":{"id":"h1"}}}`))
	})

	if _, err := client.GetHomeStatus(context.Background(), "h1"); err != nil {
		t.Fatalf("GetHomeStatus failed: %v", err)
	}
}
