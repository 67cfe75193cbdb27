package scimclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scimtools/scim-sanity/scimclient"
)

func newClient(t *testing.T, cfg scimclient.Config, opts ...scimclient.Option) *scimclient.Client {
	t.Helper()

	c, err := scimclient.New(cfg, opts...)
	require.NoError(t, err)

	return c
}

func TestDefaultHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, scimclient.Config{BaseURL: srv.URL + "/"})

	_, err := c.Get(context.Background(), "/Users")
	require.NoError(t, err)

	assert.Equal(t, "application/scim+json", got.Get("Accept"))
	assert.Equal(t, "application/scim+json", got.Get("Content-Type"))
	assert.Empty(t, got.Get("Authorization"))
}

func TestAuthentication(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cfg       scimclient.Config
		wantCheck func(t *testing.T, r *http.Request)
	}{
		"bearer token": {
			cfg: scimclient.Config{Token: "tok-123"},
			wantCheck: func(t *testing.T, r *http.Request) {
				t.Helper()
				assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			},
		},
		"basic auth": {
			cfg: scimclient.Config{Username: "admin", Password: "pw"},
			wantCheck: func(t *testing.T, r *http.Request) {
				t.Helper()

				user, pass, ok := r.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "admin", user)
				assert.Equal(t, "pw", pass)
			},
		},
		"bearer wins over basic": {
			cfg: scimclient.Config{Token: "tok-123", Username: "admin", Password: "pw"},
			wantCheck: func(t *testing.T, r *http.Request) {
				t.Helper()
				assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var req *http.Request

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				req = r.Clone(context.Background())
				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			cfg := tc.cfg
			cfg.BaseURL = srv.URL

			c := newClient(t, cfg)

			_, err := c.Get(context.Background(), "/Users")
			require.NoError(t, err)
			require.NotNil(t, req)
			tc.wantCheck(t, req)
		})
	}
}

func TestExtraHeadersOverrideDefaults(t *testing.T) {
	t.Parallel()

	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, scimclient.Config{BaseURL: srv.URL})

	_, err := c.Post(context.Background(), "/Users", map[string]any{"userName": "x"},
		scimclient.Header{Name: "Content-Type", Value: "application/json"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", got)
}

func TestRetryOn429(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		throttle     int32
		retryAfter   string
		wantStatus   int
		wantAttempts int32
		wantSleeps   []time.Duration
	}{
		"recovers after two throttles": {
			throttle:     2,
			retryAfter:   "3",
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
			wantSleeps:   []time.Duration{3 * time.Second, 3 * time.Second},
		},
		"retry-after zero floors at one second": {
			throttle:     1,
			retryAfter:   "0",
			wantStatus:   http.StatusOK,
			wantAttempts: 2,
			wantSleeps:   []time.Duration{time.Second},
		},
		"missing retry-after uses default": {
			throttle:     1,
			retryAfter:   "",
			wantStatus:   http.StatusOK,
			wantAttempts: 2,
			wantSleeps:   []time.Duration{2 * time.Second},
		},
		"unparseable retry-after uses default": {
			throttle:     1,
			retryAfter:   "Wed, 21 Oct 2026 07:28:00 GMT",
			wantStatus:   http.StatusOK,
			wantAttempts: 2,
			wantSleeps:   []time.Duration{2 * time.Second},
		},
		"gives up after three retries": {
			throttle:     10,
			retryAfter:   "1",
			wantStatus:   http.StatusTooManyRequests,
			wantAttempts: 4,
			wantSleeps:   []time.Duration{time.Second, time.Second, time.Second},
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var attempts, remaining int32

			remaining = tc.throttle

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)

				if atomic.AddInt32(&remaining, -1) >= 0 {
					if tc.retryAfter != "" {
						w.Header().Set("Retry-After", tc.retryAfter)
					}

					w.WriteHeader(http.StatusTooManyRequests)

					return
				}

				w.WriteHeader(http.StatusOK)
			}))
			t.Cleanup(srv.Close)

			var sleeps []time.Duration

			c := newClient(t, scimclient.Config{BaseURL: srv.URL},
				scimclient.WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }))

			resp, err := c.Get(context.Background(), "/Users")
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantAttempts, atomic.LoadInt32(&attempts))
			assert.Equal(t, tc.wantSleeps, sleeps)
		})
	}
}

func TestResponseJSON(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		body     string
		wantMap  bool
		wantErr  bool
		wantName string
	}{
		"object body": {
			body:     `{"userName": "jane"}`,
			wantMap:  true,
			wantName: "jane",
		},
		"empty body": {
			body:    "",
			wantMap: false,
		},
		"array body": {
			body:    `[1, 2, 3]`,
			wantMap: false,
		},
		"malformed body": {
			body:    `{"userName":`,
			wantMap: false,
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			c := newClient(t, scimclient.Config{BaseURL: srv.URL})

			resp, err := c.Get(context.Background(), "/")
			require.NoError(t, err)

			m := resp.JSONMap()
			if tc.wantMap {
				require.NotNil(t, m)
				assert.Equal(t, tc.wantName, m["userName"])
			} else {
				assert.Nil(t, m)
			}

			_, jsonErr := resp.JSON()
			if tc.wantErr {
				assert.Error(t, jsonErr)
			} else {
				assert.NoError(t, jsonErr)
			}
		})
	}
}

func TestPayloadEncoding(t *testing.T) {
	t.Parallel()

	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, scimclient.Config{BaseURL: srv.URL})

	payload := map[string]any{
		"schemas":  []string{"urn:ietf:params:scim:schemas:core:2.0:User"},
		"userName": "jane@example.com",
	}

	_, err := c.Put(context.Background(), "/Users/1", payload)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got["userName"])
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]scimclient.Config{
		"empty base url":     {},
		"unreadable ca file": {BaseURL: "https://example.com", CABundle: "/nonexistent/ca.pem"},
		"invalid proxy url":  {BaseURL: "https://example.com", Proxy: "http://bad url with spaces"},
	}

	for name, cfg := range tcs {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := scimclient.New(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, scimclient.ErrInvalidConfig)
		})
	}
}

func TestRedactAuth(t *testing.T) {
	t.Parallel()

	original := http.Header{}
	original.Set("Authorization", "Bearer super-secret")
	original.Set("Accept", "application/scim+json")

	redacted := scimclient.RedactAuth(original)

	assert.Equal(t, scimclient.Redacted, redacted.Get("Authorization"))
	assert.Equal(t, "application/scim+json", redacted.Get("Accept"))

	// The input headers are untouched.
	assert.Equal(t, "Bearer super-secret", original.Get("Authorization"))
}

func TestRedactAuthNonCanonicalKey(t *testing.T) {
	t.Parallel()

	// Maps assigned directly can bypass http.Header's key
	// canonicalization; redaction matches names case-insensitively.
	original := http.Header{
		"authorization": {"Bearer super-secret"},
		"AUTHORIZATION": {"Basic dXNlcjpwYXNz"},
		"Accept":        {"application/scim+json"},
	}

	redacted := scimclient.RedactAuth(original)

	assert.Equal(t, []string{scimclient.Redacted}, redacted["authorization"])
	assert.Equal(t, []string{scimclient.Redacted}, redacted["AUTHORIZATION"])
	assert.Equal(t, []string{"application/scim+json"}, redacted["Accept"])

	assert.Equal(t, []string{"Bearer super-secret"}, original["authorization"])
	assert.Equal(t, []string{"Basic dXNlcjpwYXNz"}, original["AUTHORIZATION"])
}

func TestTrailingSlashStripped(t *testing.T) {
	t.Parallel()

	var path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, scimclient.Config{BaseURL: srv.URL + "/"})

	_, err := c.Get(context.Background(), "/Users")
	require.NoError(t, err)
	assert.Equal(t, "/Users", path)
}
