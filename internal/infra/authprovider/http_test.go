package authprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *HTTPProvider {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPProvider(srv.URL+"/", zap.NewNop())
}

func TestHTTPProvider_GetSession(t *testing.T) {
	tests := []struct {
		name     string
		cookie   string
		status   int
		body     string
		wantNil  bool
		wantErr  bool
		wantUser string
	}{
		{
			name:     "valid session",
			cookie:   "better-auth.session_token=abc",
			status:   http.StatusOK,
			body:     `{"session":{"token":"abc","userId":"u1","expiresAt":"2026-10-20T10:00:00Z"},"user":{"id":"u1","name":"Ada","email":"ada@example.com","username":"ada"}}`,
			wantUser: "ada",
		},
		{name: "null body means no session", cookie: "x=y", status: http.StatusOK, body: "null", wantNil: true},
		{name: "unauthorized means no session", cookie: "x=y", status: http.StatusUnauthorized, body: `{}`, wantNil: true},
		{name: "no cookie never calls provider", cookie: "", wantNil: true},
		{name: "provider failure", cookie: "x=y", status: http.StatusInternalServerError, body: `{"message":"boom"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Equal(t, "/api/auth/get-session", r.URL.Path)
				assert.Equal(t, tt.cookie, r.Header.Get("Cookie"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			s, err := p.GetSession(context.Background(), tt.cookie)
			if tt.wantErr {
				require.Error(t, err)
				var perr *ProviderError
				assert.True(t, errors.As(err, &perr))
				return
			}
			require.NoError(t, err)
			if tt.cookie == "" {
				assert.False(t, called)
			}
			if tt.wantNil {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, "abc", s.Token)
			assert.Equal(t, tt.wantUser, s.User.Username)
			assert.Equal(t, 2026, s.ExpiresAt.Year())
		})
	}
}

func TestHTTPProvider_SignInUsername(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/sign-in/username", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "validpw123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"INVALID_USERNAME_OR_PASSWORD","message":"Invalid username or password"}`))
			return
		}
		w.Header().Add("Set-Cookie", "better-auth.session_token=tok; Path=/; HttpOnly")
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u1","username":"alice"}}`))
	})

	res, err := p.SignInUsername(context.Background(), "alice", "validpw123")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "alice", res.User.Username)
	require.Len(t, res.Cookies, 1)
	assert.True(t, strings.HasPrefix(res.Cookies[0], "better-auth.session_token=tok"))

	_, err = p.SignInUsername(context.Background(), "alice", "wrongpass1")
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "INVALID_USERNAME_OR_PASSWORD", perr.Code)
	assert.True(t, perr.Unauthorized())
}

func TestHTTPProvider_SignUpAndSignOut(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/sign-up/email":
			var body SignUpRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Username == "taken" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"code":"USERNAME_IS_ALREADY_TAKEN_PLEASE_TRY_ANOTHER","message":"taken"}`))
				return
			}
			_, _ = w.Write([]byte(`{"token":"t","user":{"id":"u2","displayUsername":"Bob B"}}`))
		case "/api/auth/sign-out":
			assert.Equal(t, "s=1", r.Header.Get("Cookie"))
			w.Header().Add("Set-Cookie", "better-auth.session_token=; Max-Age=0")
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	res, err := p.SignUp(ctx, SignUpRequest{Email: "bob@example.com", Username: "bob", DisplayUsername: "Bob B"})
	require.NoError(t, err)
	assert.Equal(t, "Bob B", res.User.DisplayUsername)

	_, err = p.SignUp(ctx, SignUpRequest{Username: "taken"})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "USERNAME_IS_ALREADY_TAKEN_PLEASE_TRY_ANOTHER", perr.Code)

	out, err := p.SignOut(ctx, "s=1")
	require.NoError(t, err)
	assert.Len(t, out.Cookies, 1)
}

func TestHTTPProvider_TransportError(t *testing.T) {
	p := NewHTTPProvider("http://127.0.0.1:1", zap.NewNop())
	_, err := p.GetSession(context.Background(), "a=b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do request")
}

func TestSupabaseProvider_NoNetworkPaths(t *testing.T) {
	p := NewSupabaseProvider("ref", "key", "http://127.0.0.1:1", "sb-access-token", zap.NewNop())
	ctx := context.Background()

	s, err := p.GetSession(ctx, "other=1")
	assert.NoError(t, err)
	assert.Nil(t, s)

	_, err = p.SignInUsername(ctx, "alice", "validpw123")
	assert.ErrorIs(t, err, ErrUnsupported)

	out, err := p.SignOut(ctx, "")
	require.NoError(t, err)
	require.Len(t, out.Cookies, 1)
	assert.Contains(t, out.Cookies[0], "sb-access-token=")
	assert.Contains(t, out.Cookies[0], "Max-Age=0")
}

func TestAccessToken(t *testing.T) {
	assert.Equal(t, "abc", accessToken("a=1; sb-access-token=abc", "sb-access-token"))
	assert.Equal(t, "", accessToken("a=1", "sb-access-token"))
	assert.Equal(t, "", accessToken("", "sb-access-token"))
}
