package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eakyuz/zikirmatik/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles sign-in, sign-out, and JWT token operations against
// the identity directory and the profile store.
type AuthService struct {
	identities domain.IdentityDirectory
	accounts   domain.AccountRepository
	jwtSecret  []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(identities domain.IdentityDirectory, accounts domain.AccountRepository, jwtSecret string) *AuthService {
	return &AuthService{
		identities: identities,
		accounts:   accounts,
		jwtSecret:  []byte(jwtSecret),
	}
}

// Login verifies credentials and returns a signed JWT token string along
// with the signed-in account. An identity whose profile record is missing
// or soft-deleted cannot sign in: a zombie identity or deleted account
// must not reach the counter.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("get identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrUnauthorized
	}

	account, err := s.accounts.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("get account: %w", err)
	}
	if account.Deleted {
		return "", nil, domain.ErrUnauthorized
	}

	token, err := s.generateJWT(account)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	return token, account, nil
}

// ValidateToken parses and validates a JWT token string.
// Returns the account ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}

	return sub, nil
}

// GetAccountByID retrieves an account by its ID.
func (s *AuthService) GetAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AuthService) generateJWT(account *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          account.ID,
		"email":        account.Email,
		"display_name": account.DisplayName,
		"role":         string(account.Role),
		"iat":          now.Unix(),
		"exp":          now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
