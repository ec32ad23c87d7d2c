package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/niledreams/backend-travel/internal/common"
	"github.com/niledreams/backend-travel/internal/store"
)

// StaffStore is the subset of the store the auth service needs.
type StaffStore interface {
	GetStaffByEmail(ctx context.Context, email string) (store.StaffUser, error)
}

// Service issues and validates staff access tokens.
type Service struct {
	Store     StaffStore
	Secret    []byte
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	ClockSkew time.Duration
	Signer    jwa.SignatureAlgorithm
	Now       func() time.Time

	validator TokenValidator
}

// NewService constructs a Service with sane defaults.
func NewService(st StaffStore, secret string, accessTTL time.Duration) *Service {
	s := &Service{
		Store:     st,
		Secret:    []byte(secret),
		Issuer:    "backend-travel",
		Audience:  "travel-admin",
		AccessTTL: accessTTL,
		ClockSkew: 30 * time.Second,
		Signer:    jwa.HS256,
	}
	s.validator = TokenValidator{
		Algorithm: s.Signer,
		Issuer:    s.Issuer,
		Audience:  s.Audience,
		ClockSkew: s.ClockSkew,
	}
	return s
}

// LoginResult carries the issued token and its expiry.
type LoginResult struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	DisplayName string    `json:"display_name"`
}

// Login verifies staff credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if s == nil || s.Store == nil {
		return LoginResult{}, errors.New("auth: service not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, common.NewAppError("VALIDATION", "email and password are required", http.StatusBadRequest, nil)
	}

	user, err := s.Store.GetStaffByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized, err)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load staff: %w", err)
	}

	ok, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return LoginResult{}, common.NewAppError("UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized, nil)
	}

	token, expiresAt, err := s.signAccessToken(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt, DisplayName: user.DisplayName}, nil
}

// ParseAccessToken validates an access token and returns the staff user id.
func (s *Service) ParseAccessToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.Secret), jwt.WithValidate(false))
	if err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return "", common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return parsed.Subject(), nil
}

func (s *Service) signAccessToken(staffID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.AccessTTL)
	token, err := jwt.NewBuilder().
		Subject(staffID).
		Issuer(s.Issuer).
		Audience([]string{s.Audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.ClockSkew)).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.Signer, s.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
