package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

const minSecretLength = 8

// ErrInvalidCredentials hides whether the address or the secret was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages principal lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a principal for creds.Address with a hashed secret.
func (s *Service) Register(ctx context.Context, creds Credentials) (Principal, error) {
	if len(creds.Secret) < minSecretLength {
		return Principal{}, fmt.Errorf("secret must be at least %d characters: %w", minSecretLength, apperrors.ErrInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Secret), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, err
	}

	p := Principal{
		ID:         uuid.New().String(),
		Address:    creds.Address,
		SecretHash: hash,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Principal{}, err
	}

	return p, nil
}

// Authenticate verifies the secret presented for an address.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	p, err := s.repo.FindByAddress(ctx, creds.Address)
	if errors.Is(err, apperrors.ErrNotFound) {
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, err
	}

	if err := bcrypt.CompareHashAndPassword(p.SecretHash, []byte(creds.Secret)); err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	return p, nil
}
