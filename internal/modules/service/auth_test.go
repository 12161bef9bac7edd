package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) GetSession(ctx context.Context, cookieHeader string) (*authprovider.Session, error) {
	args := m.Called(ctx, cookieHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Session), args.Error(1)
}

func (m *MockAuthProvider) SignUp(ctx context.Context, req authprovider.SignUpRequest) (*authprovider.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Result), args.Error(1)
}

func (m *MockAuthProvider) SignInUsername(ctx context.Context, username, password string) (*authprovider.Result, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Result), args.Error(1)
}

func (m *MockAuthProvider) SignInEmail(ctx context.Context, email, password string) (*authprovider.Result, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Result), args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, cookieHeader string) (*authprovider.Result, error) {
	args := m.Called(ctx, cookieHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authprovider.Result), args.Error(1)
}

func TestAuthService_SignInUsername(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		input    validation.SignInUsernameInput
		setup    func(*MockAuthProvider)
		wantCode string
	}{
		{
			name:     "short username rejected before the provider",
			input:    validation.SignInUsernameInput{Username: "ab", Password: "validpw123"},
			setup:    func(p *MockAuthProvider) {},
			wantCode: validation.CodeInvalidUsername,
		},
		{
			name:     "short password rejected before the provider",
			input:    validation.SignInUsernameInput{Username: "alice", Password: "short"},
			setup:    func(p *MockAuthProvider) {},
			wantCode: validation.CodeInvalidPassword,
		},
		{
			name:  "provider refuses credentials",
			input: validation.SignInUsernameInput{Username: "alice", Password: "validpw123"},
			setup: func(p *MockAuthProvider) {
				p.On("SignInUsername", ctx, "alice", "validpw123").
					Return(nil, &authprovider.ProviderError{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"})
			},
			wantCode: validation.CodeInvalidUsernameOrPassword,
		},
		{
			name:  "success trims username",
			input: validation.SignInUsernameInput{Username: "  alice ", Password: "validpw123"},
			setup: func(p *MockAuthProvider) {
				p.On("SignInUsername", ctx, "alice", "validpw123").
					Return(&authprovider.Result{Token: "tok", Cookies: []string{"a=b"}}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &MockAuthProvider{}
			tt.setup(p)

			svc := NewAuthService(p, nil)
			res, err := svc.SignInUsername(ctx, tt.input)

			if tt.wantCode != "" {
				var ae *AuthError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, tt.wantCode, ae.Code)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "tok", res.Token)
			}
			p.AssertExpectations(t)
			if tt.wantCode == validation.CodeInvalidUsername || tt.wantCode == validation.CodeInvalidPassword {
				p.AssertNotCalled(t, "SignInUsername", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	valid := validation.SignUpInput{
		Email:           "alice@example.com",
		Name:            "Alice Liddell",
		Password:        "validpw123",
		Username:        "alice",
		DisplayUsername: "Alice",
	}

	t.Run("first failing field decides the code", func(t *testing.T) {
		p := &MockAuthProvider{}
		in := valid
		in.Email = "nope"
		in.Username = "x"

		_, err := NewAuthService(p, nil).SignUp(ctx, in)

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, validation.CodeInvalidEmail, ae.Code)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
		assert.Contains(t, ae.Fields, "username")
		p.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
	})

	t.Run("username taken", func(t *testing.T) {
		p := &MockAuthProvider{}
		p.On("SignUp", ctx, mock.Anything).Return(nil, &authprovider.ProviderError{
			Status: http.StatusUnprocessableEntity,
			Code:   validation.CodeUsernameTaken,
		})

		_, err := NewAuthService(p, nil).SignUp(ctx, valid)

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, validation.CodeUsernameTaken, ae.Code)
	})

	t.Run("provider outage passes through", func(t *testing.T) {
		p := &MockAuthProvider{}
		boom := &authprovider.ProviderError{Status: http.StatusBadGateway}
		p.On("SignUp", ctx, mock.Anything).Return(nil, boom)

		_, err := NewAuthService(p, nil).SignUp(ctx, valid)

		var ae *AuthError
		assert.False(t, errors.As(err, &ae))
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_SignInEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported provider", func(t *testing.T) {
		p := &MockAuthProvider{}
		p.On("SignInEmail", ctx, "a@b.co", "validpw123").Return(nil, authprovider.ErrUnsupported)

		_, err := NewAuthService(p, nil).SignInEmail(ctx, validation.SignInEmailInput{Email: "a@b.co", Password: "validpw123"})

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, http.StatusNotImplemented, ae.Status)
	})

	t.Run("wrong password", func(t *testing.T) {
		p := &MockAuthProvider{}
		p.On("SignInEmail", ctx, "a@b.co", "validpw123").
			Return(nil, &authprovider.ProviderError{Status: http.StatusUnauthorized})

		_, err := NewAuthService(p, nil).SignInEmail(ctx, validation.SignInEmailInput{Email: "a@b.co", Password: "validpw123"})

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, validation.CodeInvalidEmailOrPassword, ae.Code)
	})
}

func TestAuthService_GetSession(t *testing.T) {
	ctx := context.Background()
	p := &MockAuthProvider{}
	p.On("GetSession", ctx, "").Return(nil, nil)
	p.On("GetSession", ctx, "sid=1").Return(&authprovider.Session{UserID: "u1"}, nil)

	svc := NewAuthService(p, nil)

	s, err := svc.GetSession(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, s)

	s, err = svc.GetSession(ctx, "sid=1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
}
