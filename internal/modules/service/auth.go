package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/devfolio-io/devfolio/internal/infra/authprovider"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"go.uber.org/zap"
)

// AuthError is a credential rejection with a client-facing code.
type AuthError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

type AuthService interface {
	SignUp(ctx context.Context, in validation.SignUpInput) (*authprovider.Result, error)
	SignInUsername(ctx context.Context, in validation.SignInUsernameInput) (*authprovider.Result, error)
	SignInEmail(ctx context.Context, in validation.SignInEmailInput) (*authprovider.Result, error)
	SignOut(ctx context.Context, cookieHeader string) (*authprovider.Result, error)
	GetSession(ctx context.Context, cookieHeader string) (*authprovider.Session, error)
}

type authService struct {
	p   authprovider.Provider
	log *zap.Logger
}

func NewAuthService(p authprovider.Provider, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{p: p, log: log}
}

// SignUp re-validates the form server-side; the provider is only called with valid input.
func (s *authService) SignUp(ctx context.Context, in validation.SignUpInput) (*authprovider.Result, error) {
	parsed, fe := validation.Parse(in)
	if fe != nil {
		return nil, preValidationError(fe)
	}

	res, err := s.p.SignUp(ctx, authprovider.SignUpRequest{
		Email:           parsed.Email,
		Name:            parsed.Name,
		Password:        parsed.Password,
		Username:        parsed.Username,
		DisplayUsername: parsed.DisplayUsername,
	})
	if err != nil {
		return nil, s.providerError(err, validation.CodeUsernameTaken)
	}
	return res, nil
}

func (s *authService) SignInUsername(ctx context.Context, in validation.SignInUsernameInput) (*authprovider.Result, error) {
	parsed, fe := validation.Parse(in)
	if fe != nil {
		return nil, preValidationError(fe)
	}

	res, err := s.p.SignInUsername(ctx, parsed.Username, parsed.Password)
	if err != nil {
		return nil, s.providerError(err, validation.CodeInvalidUsernameOrPassword)
	}
	return res, nil
}

func (s *authService) SignInEmail(ctx context.Context, in validation.SignInEmailInput) (*authprovider.Result, error) {
	parsed, fe := validation.Parse(in)
	if fe != nil {
		return nil, preValidationError(fe)
	}

	res, err := s.p.SignInEmail(ctx, parsed.Email, parsed.Password)
	if err != nil {
		return nil, s.providerError(err, validation.CodeInvalidEmailOrPassword)
	}
	return res, nil
}

func (s *authService) SignOut(ctx context.Context, cookieHeader string) (*authprovider.Result, error) {
	return s.p.SignOut(ctx, cookieHeader)
}

// GetSession returns (nil, nil) when there is no valid session.
func (s *authService) GetSession(ctx context.Context, cookieHeader string) (*authprovider.Session, error) {
	return s.p.GetSession(ctx, cookieHeader)
}

func preValidationError(fe *validation.FieldErrors) *AuthError {
	code, ok := fe.FirstAuthCode()
	if !ok {
		code = validation.CodeValidationError
	}
	return &AuthError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: fe.Error(),
		Fields:  fe.Fields,
	}
}

// providerError keeps the provider's code unless it is missing or the provider
// refused the credentials, in which case fallback is used.
func (s *authService) providerError(err error, fallback string) error {
	if errors.Is(err, authprovider.ErrUnsupported) {
		return &AuthError{Status: http.StatusNotImplemented, Code: "UNSUPPORTED", Message: err.Error()}
	}

	var pe *authprovider.ProviderError
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Status >= http.StatusInternalServerError {
		s.log.Warn("auth provider failure", zap.Int("status", pe.Status), zap.String("code", pe.Code))
		return err
	}

	code := pe.Code
	switch code {
	case validation.CodeInvalidUsernameOrPassword,
		validation.CodeInvalidEmailOrPassword,
		validation.CodeUsernameTaken,
		validation.CodeInvalidEmail,
		validation.CodeInvalidPassword,
		validation.CodeInvalidUsername,
		validation.CodeInvalidDisplayUsername,
		validation.CodeInvalidName:
	default:
		if code == "" || pe.Unauthorized() {
			code = fallback
		}
	}
	return &AuthError{Status: pe.Status, Code: code, Message: pe.Message}
}
