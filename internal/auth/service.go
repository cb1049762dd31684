package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// TokenIssuer mints opaque tokens for authenticated users.
type TokenIssuer interface {
	Issue(ctx context.Context, userID string) (string, error)
}

// Service wraps the login rules: the account must exist, the password must
// match, and the resolved role name must equal the privileged role name.
// Checks run in that order; a bad password rejects before the role is looked
// at.
type Service struct {
	repo           Repository
	tokens         TokenIssuer
	privilegedRole string
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens TokenIssuer, privilegedRole string) *Service {
	return &Service{repo: repo, tokens: tokens, privilegedRole: privilegedRole}
}

// Login validates credentials and returns a token on success.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return "", fmt.Errorf("user not found: %w", httpx.ErrBadCredentials)
		}
		// A lookup failure is a datastore problem, not a credential problem.
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid password: %w", httpx.ErrBadCredentials)
	}
	if acc.RoleName != s.privilegedRole {
		return "", fmt.Errorf("access denied: %w", httpx.ErrForbidden)
	}
	token, err := s.tokens.Issue(ctx, acc.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}
