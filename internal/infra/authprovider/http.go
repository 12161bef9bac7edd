package authprovider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// HTTPProvider speaks the better-auth REST dialect under {BaseURL}/api/auth.
type HTTPProvider struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewHTTPProvider creates an HTTPProvider with OpenTelemetry instrumentation
func NewHTTPProvider(baseURL string, log *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type getSessionResponse struct {
	Session *struct {
		Token     string    `json:"token"`
		UserID    string    `json:"userId"`
		ExpiresAt time.Time `json:"expiresAt"`
	} `json:"session"`
	User *User `json:"user"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *HTTPProvider) GetSession(ctx context.Context, cookieHeader string) (*Session, error) {
	if cookieHeader == "" {
		return nil, nil
	}

	resp, body, err := p.do(ctx, http.MethodGet, "/get-session", cookieHeader, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.providerError("get_session", resp, body)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var out getSessionResponse
	if err := sonic.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Session == nil || out.User == nil {
		return nil, nil
	}
	return &Session{
		Token:     out.Session.Token,
		UserID:    out.Session.UserID,
		ExpiresAt: out.Session.ExpiresAt,
		User:      *out.User,
	}, nil
}

func (p *HTTPProvider) SignUp(ctx context.Context, req SignUpRequest) (*Result, error) {
	return p.credentials(ctx, "/sign-up/email", "sign_up", req)
}

func (p *HTTPProvider) SignInUsername(ctx context.Context, username, password string) (*Result, error) {
	return p.credentials(ctx, "/sign-in/username", "sign_in_username", map[string]string{
		"username": username,
		"password": password,
	})
}

func (p *HTTPProvider) SignInEmail(ctx context.Context, email, password string) (*Result, error) {
	return p.credentials(ctx, "/sign-in/email", "sign_in_email", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (p *HTTPProvider) SignOut(ctx context.Context, cookieHeader string) (*Result, error) {
	resp, body, err := p.do(ctx, http.MethodPost, "/sign-out", cookieHeader, map[string]any{})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.providerError("sign_out", resp, body)
	}
	return &Result{Cookies: resp.Header.Values("Set-Cookie")}, nil
}

func (p *HTTPProvider) credentials(ctx context.Context, path, op string, payload any) (*Result, error) {
	resp, body, err := p.do(ctx, http.MethodPost, path, "", payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, p.providerError(op, resp, body)
	}

	var out Result
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	out.Cookies = resp.Header.Values("Set-Cookie")
	return &out, nil
}

func (p *HTTPProvider) do(ctx context.Context, method, path, cookieHeader string, payload any) (*http.Response, []byte, error) {
	endpoint := p.BaseURL + "/api/auth" + path

	var reqBody io.Reader
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if cookieHeader != "" {
		httpReq.Header.Set("Cookie", cookieHeader)
	}

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp, body, nil
}

func (p *HTTPProvider) providerError(op string, resp *http.Response, body []byte) error {
	var e errorResponse
	_ = sonic.Unmarshal(body, &e)
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		p.Logger.Error(op+" request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
	}
	return &ProviderError{Status: resp.StatusCode, Code: e.Code, Message: e.Message}
}
