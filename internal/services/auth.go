package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Renal37/fuel-orders/internal/models"
)

var ErrMalformedToken = errors.New("login returned a token that cannot be decoded")

// AuthService registers users and opens sessions against the fuel order API.
type AuthService struct {
	backend models.AuthBackend
	jwt     models.JWTService
}

func NewAuthService(backend models.AuthBackend, jwt models.JWTService) *AuthService {
	return &AuthService{backend: backend, jwt: jwt}
}

func (auth *AuthService) Register(ctx context.Context, registration models.Registration) error {
	registration.Email = strings.TrimSpace(registration.Email)

	verr := validateCredentials(registration.Email, registration.Password)
	if !registration.Role.IsKnown() {
		verr.add("role", "must be AIRCRAFT_OPERATOR or OPERATIONS_MANAGER")
	}
	if err := verr.errOrNil(); err != nil {
		return err
	}

	if err := auth.backend.Register(ctx, registration); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	return nil
}

// Login exchanges credentials for a token and decodes it into a session.
func (auth *AuthService) Login(ctx context.Context, credentials models.Credentials) (*models.Session, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)

	if err := validateCredentials(credentials.Email, credentials.Password).errOrNil(); err != nil {
		return nil, err
	}

	token, err := auth.backend.Login(ctx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	session := auth.jwt.Decode(token)
	if session == nil {
		return nil, ErrMalformedToken
	}

	return session, nil
}

func validateCredentials(email, password string) *ValidationError {
	verr := &ValidationError{}

	if email == "" {
		verr.add("email", "is required")
	} else if !strings.Contains(email, "@") {
		verr.add("email", "must be an email address")
	}

	if password == "" {
		verr.add("password", "is required")
	}

	return verr
}
