package authprovider

import (
	"context"
	"net/http"
	"strings"
	"time"

	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
	"go.uber.org/zap"
)

// SupabaseProvider backs sessions with Supabase Auth. The browser keeps the
// access token in CookieName.
type SupabaseProvider struct {
	client     auth.Client
	CookieName string
	Logger     *zap.Logger
}

func NewSupabaseProvider(projectRef, apiKey, customURL, cookieName string, log *zap.Logger) *SupabaseProvider {
	client := auth.New(projectRef, apiKey)
	if customURL != "" {
		client = client.WithCustomAuthURL(customURL)
	}
	return &SupabaseProvider{client: client, CookieName: cookieName, Logger: log}
}

// accessToken pulls the configured cookie out of a raw Cookie header.
func accessToken(cookieHeader, name string) string {
	if cookieHeader == "" || name == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": []string{cookieHeader}}}
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func userFromSupabase(u types.User) User {
	out := User{
		ID:    u.ID.String(),
		Email: u.Email,
	}
	if name, ok := u.UserMetadata["name"].(string); ok {
		out.Name = name
	}
	if username, ok := u.UserMetadata["username"].(string); ok {
		out.Username = username
	}
	if display, ok := u.UserMetadata["display_username"].(string); ok {
		out.DisplayUsername = display
	}
	if img, ok := u.UserMetadata["avatar_url"].(string); ok && img != "" {
		out.Image = &img
	}
	return out
}

func (p *SupabaseProvider) GetSession(ctx context.Context, cookieHeader string) (*Session, error) {
	tok := accessToken(cookieHeader, p.CookieName)
	if tok == "" {
		return nil, nil
	}

	resp, err := p.client.WithToken(tok).GetUser()
	if err != nil {
		// an expired or forged token is simply no session
		p.Logger.Debug("supabase get user failed", zap.Error(err))
		return nil, nil
	}
	u := userFromSupabase(resp.User)
	return &Session{Token: tok, UserID: u.ID, User: u}, nil
}

func (p *SupabaseProvider) SignUp(ctx context.Context, req SignUpRequest) (*Result, error) {
	resp, err := p.client.Signup(types.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data: map[string]interface{}{
			"name":             req.Name,
			"username":         req.Username,
			"display_username": req.DisplayUsername,
		},
	})
	if err != nil {
		return nil, &ProviderError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	u := userFromSupabase(resp.User)
	return &Result{
		Token:   resp.AccessToken,
		User:    &u,
		Cookies: p.sessionCookies(resp.AccessToken, int(resp.ExpiresIn)),
	}, nil
}

func (p *SupabaseProvider) SignInUsername(ctx context.Context, username, password string) (*Result, error) {
	return nil, ErrUnsupported
}

func (p *SupabaseProvider) SignInEmail(ctx context.Context, email, password string) (*Result, error) {
	resp, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, &ProviderError{Status: http.StatusUnauthorized, Code: "INVALID_EMAIL_OR_PASSWORD", Message: err.Error()}
	}
	u := userFromSupabase(resp.User)
	return &Result{
		Token:   resp.AccessToken,
		User:    &u,
		Cookies: p.sessionCookies(resp.AccessToken, int(resp.ExpiresIn)),
	}, nil
}

func (p *SupabaseProvider) SignOut(ctx context.Context, cookieHeader string) (*Result, error) {
	tok := accessToken(cookieHeader, p.CookieName)
	if tok != "" {
		if err := p.client.WithToken(tok).Logout(); err != nil {
			p.Logger.Warn("supabase logout failed", zap.Error(err))
		}
	}
	return &Result{Cookies: p.sessionCookies("", -1)}, nil
}

// sessionCookies renders the Set-Cookie value holding the access token.
// A negative maxAge clears it.
func (p *SupabaseProvider) sessionCookies(token string, maxAge int) []string {
	if token == "" && maxAge >= 0 {
		return nil
	}
	if maxAge == 0 {
		maxAge = int((24 * time.Hour).Seconds())
	}
	c := &http.Cookie{
		Name:     p.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	return []string{c.String()}
}
