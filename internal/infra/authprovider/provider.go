// Package authprovider talks to the external identity service that owns users,
// passwords and sessions.
package authprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrUnsupported = errors.New("operation not supported by auth provider")

type User struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	EmailVerified   bool    `json:"emailVerified"`
	Image           *string `json:"image"`
	Username        string  `json:"username"`
	DisplayUsername string  `json:"displayUsername"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type SignUpRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	Username        string `json:"username"`
	DisplayUsername string `json:"displayUsername"`
}

// Result is what a sign-in, sign-up or sign-out hands back to the caller.
// Cookies are raw Set-Cookie values to relay to the browser.
type Result struct {
	Token   string   `json:"token,omitempty"`
	User    *User    `json:"user,omitempty"`
	Cookies []string `json:"-"`
}

// ProviderError is a rejection reported by the provider itself.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth provider: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth provider: %d: %s", e.Status, e.Message)
}

// Unauthorized reports whether the provider refused the credentials or session.
func (e *ProviderError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

type Provider interface {
	// GetSession returns (nil, nil) when the cookie carries no valid session.
	GetSession(ctx context.Context, cookieHeader string) (*Session, error)
	SignUp(ctx context.Context, req SignUpRequest) (*Result, error)
	SignInUsername(ctx context.Context, username, password string) (*Result, error)
	SignInEmail(ctx context.Context, email, password string) (*Result, error)
	SignOut(ctx context.Context, cookieHeader string) (*Result, error)
}
