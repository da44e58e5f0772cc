package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/companyhub/companyhub/internal/auth"
	"github.com/companyhub/companyhub/internal/metrics"
	"github.com/companyhub/companyhub/internal/model"
	"github.com/companyhub/companyhub/internal/repository"
)

// Authentication attempt kinds reported to metrics.
const (
	attemptSignUp  = "sign_up"
	attemptSignIn  = "sign_in"
	attemptSignOut = "sign_out"
	attemptToken   = "token"
)

// Session is a signed-in user and the bearer token proving it.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// SignUpInput defines input for registration.
type SignUpInput struct {
	Email                string
	Password             string
	PasswordConfirmation *string
}

// AuthServiceConfig wires an AuthService.
type AuthServiceConfig struct {
	Users             UserStore
	Denylist          TokenDenylist
	Hasher            *auth.Hasher
	Tokens            *auth.TokenManager
	PasswordMinLength int
	Metrics           metrics.Recorder
}

// AuthService registers users and manages their sessions.
type AuthService struct {
	users          UserStore
	denylist       TokenDenylist
	hasher         *auth.Hasher
	tokens         *auth.TokenManager
	minPasswordLen int
	validate       *validator.Validate
	metrics        metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.PasswordMinLength < 1 {
		cfg.PasswordMinLength = 6
	}
	return &AuthService{
		users:          cfg.Users,
		denylist:       cfg.Denylist,
		hasher:         cfg.Hasher,
		tokens:         cfg.Tokens,
		minPasswordLen: cfg.PasswordMinLength,
		validate:       validator.New(),
		metrics:        cfg.Metrics,
	}
}

// SignUp creates a user and opens a session for it.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	email := normalizeEmail(in.Email)

	errs, err := s.validateSignUp(ctx, email, in)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		s.metrics.IncAuthAttempt(attemptSignUp, metrics.ResultFailure)
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Email: email, EncryptedPassword: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncAuthAttempt(attemptSignUp, metrics.ResultFailure)
			return nil, &ValidationError{Messages: []string{"Email has already been taken"}}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncAuthAttempt(attemptSignUp, metrics.ResultSuccess)
	return s.issueSession(user)
}

// SignIn verifies credentials and opens a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticate(ctx, normalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncAuthAttempt(attemptSignIn, metrics.ResultFailure)
		}
		return nil, err
	}

	s.metrics.IncAuthAttempt(attemptSignIn, metrics.ResultSuccess)
	return s.issueSession(user)
}

// Authenticate resolves the principal behind a bearer token.
// Any token problem is reported as ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	principal, _, err := s.resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			s.metrics.IncAuthAttempt(attemptToken, metrics.ResultFailure)
		}
		return nil, err
	}
	s.metrics.IncAuthAttempt(attemptToken, metrics.ResultSuccess)
	return principal, nil
}

// SignOut revokes the token and returns its user.
func (s *AuthService) SignOut(ctx context.Context, token string) (*model.User, error) {
	principal, user, err := s.resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			s.metrics.IncAuthAttempt(attemptSignOut, metrics.ResultFailure)
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	if err := s.denylist.DenyToken(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	s.metrics.IncAuthAttempt(attemptSignOut, metrics.ResultSuccess)
	return user, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) issueSession(user *model.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// resolve parses the token, rejects revoked ones and loads the user.
func (s *AuthService) resolve(ctx context.Context, token string) (*model.Principal, *model.User, error) {
	if token == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	denied, err := s.denylist.IsTokenDenied(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check session: %w", err)
	}
	if denied {
		return nil, nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	principal := &model.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return principal, user, nil
}

func (s *AuthService) validateSignUp(ctx context.Context, email string, in SignUpInput) (validationErrors, error) {
	var errs validationErrors

	switch {
	case email == "":
		errs.add("Email can't be blank")
	case s.validate.Var(email, "email") != nil:
		errs.add("Email is invalid")
	default:
		_, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			errs.add("Email has already been taken")
		case !errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}

	switch {
	case in.Password == "":
		errs.add("Password can't be blank")
	case s.validate.Var(in.Password, fmt.Sprintf("min=%d", s.minPasswordLen)) != nil:
		errs.add(fmt.Sprintf("Password is too short (minimum is %d characters)", s.minPasswordLen))
	}

	if in.PasswordConfirmation != nil && *in.PasswordConfirmation != in.Password {
		errs.add("Password confirmation doesn't match Password")
	}

	return errs, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
