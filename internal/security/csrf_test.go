package security_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cookie-auth-server/config"
	"cookie-auth-server/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSRFGuard(secret string) *security.CSRFGuard {
	csrfCfg := testCSRFConfig()
	csrfCfg.SecretKey = secret
	jar := security.NewCookieJar(config.CookieConfig{Path: "/"}, testJWTConfig(), csrfCfg)
	return security.NewCSRFGuard(csrfCfg, jar)
}

func rotatedToken(t *testing.T, guard *security.CSRFGuard) string {
	t.Helper()
	rec := httptest.NewRecorder()
	token, err := guard.Rotate(rec)
	require.NoError(t, err)

	cookie := cookiesByName(rec)["csrftoken"]
	require.NotNil(t, cookie)
	require.Equal(t, token, cookie.Value)
	return token
}

func csrfRequest(cookie, header string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/logout/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: cookie})
	}
	if header != "" {
		req.Header.Set("X-CSRFToken", header)
	}
	return req
}

func TestCSRFGuard_Rotate(t *testing.T) {
	guard := newTestCSRFGuard("csrf-secret")

	first := rotatedToken(t, guard)
	second := rotatedToken(t, guard)

	assert.NotEqual(t, first, second)
	nonce, signature, ok := strings.Cut(first, ".")
	assert.True(t, ok)
	assert.NotEmpty(t, nonce)
	assert.NotEmpty(t, signature)
	assert.Equal(t, "X-CSRFToken", guard.HeaderName())
}

func TestCSRFGuard_Validate(t *testing.T) {
	guard := newTestCSRFGuard("csrf-secret")
	token := rotatedToken(t, guard)
	other := rotatedToken(t, guard)
	foreign := rotatedToken(t, newTestCSRFGuard("another-secret"))

	tests := []struct {
		name   string
		cookie string
		header string
		valid  bool
	}{
		{name: "matching", cookie: token, header: token, valid: true},
		{name: "missing header", cookie: token},
		{name: "missing cookie", header: token},
		{name: "different token", cookie: token, header: other},
		{name: "unsigned cookie", cookie: "forged", header: "forged"},
		{name: "signed by another secret", cookie: foreign, header: foreign},
		{name: "tampered signature", cookie: token + "x", header: token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Validate(csrfRequest(tt.cookie, tt.header))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, security.ErrCSRFMismatch)
		})
	}
}

func TestCSRFGuard_EnsureIssued(t *testing.T) {
	guard := newTestCSRFGuard("csrf-secret")
	token := rotatedToken(t, guard)

	got, fresh, err := guard.EnsureIssued(csrfRequest(token, ""))
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, token, got)

	got, fresh, err = guard.EnsureIssued(csrfRequest("", ""))
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.NotEqual(t, token, got)

	_, fresh, err = guard.EnsureIssued(csrfRequest("forged", ""))
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestCSRFGuard_InjectCookie(t *testing.T) {
	guard := newTestCSRFGuard("csrf-secret")

	t.Run("sets cookie when request has none", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, guard.InjectCookie(rec, csrfRequest("", "")))

		cookie := cookiesByName(rec)["csrftoken"]
		require.NotNil(t, cookie)
		assert.NoError(t, guard.Validate(csrfRequest(cookie.Value, cookie.Value)))
	})

	t.Run("keeps valid cookie", func(t *testing.T) {
		token := rotatedToken(t, guard)
		rec := httptest.NewRecorder()
		require.NoError(t, guard.InjectCookie(rec, csrfRequest(token, "")))

		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})

	t.Run("does not override handler cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		token, err := guard.Rotate(rec)
		require.NoError(t, err)

		require.NoError(t, guard.InjectCookie(rec, csrfRequest("", "")))

		values := rec.Header().Values("Set-Cookie")
		assert.Len(t, values, 1)
		assert.Equal(t, token, cookiesByName(rec)["csrftoken"].Value)
	})
}
