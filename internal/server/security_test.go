package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveSecured runs one request through SecurityMiddleware and reports
// whether the wrapped handler ran.
func serveSecured(t *testing.T, cfg SecurityConfig, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	h := SecurityMiddleware(cfg, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(method, "/status", http.NoBody)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec, called
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()
	assert.True(t, cfg.EnableCORS)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodOptions}, cfg.AllowedMethods)
	assert.Greater(t, cfg.RequestTimeout, time.Duration(0))
	assert.LessOrEqual(t, cfg.RequestTimeout, time.Minute)
}

func TestSecurityMiddleware_HardeningHeaders(t *testing.T) {
	rec, called := serveSecured(t, SecurityConfig{}, http.MethodGet, "")
	require.True(t, called)

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for header, value := range want {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SecurityConfig
		origin     string
		wantOrigin string
	}{
		{
			name:   "disabled",
			cfg:    SecurityConfig{AllowedOrigins: []string{"*"}},
			origin: "http://dashboard.local",
		},
		{
			name:       "wildcard",
			cfg:        SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{http.MethodGet}},
			origin:     "http://dashboard.local",
			wantOrigin: "*",
		},
		{
			name:       "wildcard without Origin header",
			cfg:        SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}},
			wantOrigin: "*",
		},
		{
			name:       "listed origin",
			cfg:        SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.local", "http://b.local"}},
			origin:     "http://b.local",
			wantOrigin: "http://b.local",
		},
		{
			name:   "unlisted origin",
			cfg:    SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.local"}},
			origin: "http://evil.local",
		},
		{
			name:   "no allowed origins",
			cfg:    SecurityConfig{EnableCORS: true},
			origin: "http://a.local",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serveSecured(t, tt.cfg, http.MethodGet, tt.origin)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin == "" {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
			} else {
				assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
				assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	rec, called := serveSecured(t, DefaultSecurityConfig(), http.MethodOptions, "http://dashboard.local")
	assert.False(t, called, "preflight must not reach the handler")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestSecurityMiddleware_PassesOtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec, called := serveSecured(t, DefaultSecurityConfig(), method, "")
			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
