package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/identity"
)

// ErrInvalidToken covers every reason a presented token is refused.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies the bearer tokens that carry the caller
// address.
type Service struct {
	cfg    config.Config
	idRepo identity.Repository
	now    func() time.Time
}

func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo, now: time.Now}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues a token pair for an authenticated principal.
func (s *Service) Login(p identity.Principal) (TokenPair, error) {
	access, err := s.sign(p.Address, p.TokenVersion, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(p.Address, p.TokenVersion, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}

// IssueFor mints an access token for a registered address. Used by the
// token command for operators.
func (s *Service) IssueFor(ctx context.Context, addr common.Address, ttl time.Duration) (string, error) {
	p, err := s.idRepo.FindByAddress(ctx, addr)
	if err != nil {
		return "", err
	}
	return s.sign(p.Address, p.TokenVersion, s.cfg.JWTSecret, ttl)
}

func (s *Service) sign(addr common.Address, version int, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := map[string]any{
		"sub": addr.Hex(),
		"ver": version,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return SignHS256(claims, []byte(secret))
}

// VerifyAccess checks an access token and returns the caller address it
// carries. Tokens minted before the principal's last logout are refused.
func (s *Service) VerifyAccess(ctx context.Context, token string) (common.Address, error) {
	p, err := s.verify(ctx, token, s.cfg.JWTSecret)
	if err != nil {
		return common.Address{}, err
	}
	return p.Address, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	p, err := s.verify(ctx, refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, err
	}
	signed, err := s.sign(p.Address, p.TokenVersion, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments the token version of the refresh token's subject so
// older tokens become invalid.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	p, err := s.verify(ctx, refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return err
	}
	return s.idRepo.UpdateTokenVersion(ctx, p.ID, p.TokenVersion+1)
}

func (s *Service) verify(ctx context.Context, token, secret string) (identity.Principal, error) {
	claims, err := ParseAndVerifyHS256(token, []byte(secret), s.now())
	if err != nil {
		return identity.Principal{}, errors.Join(ErrInvalidToken, err)
	}
	sub, _ := claims["sub"].(string)
	if !common.IsHexAddress(sub) {
		return identity.Principal{}, ErrInvalidToken
	}
	verFloat, _ := claims["ver"].(float64)

	p, err := s.idRepo.FindByAddress(ctx, common.HexToAddress(sub))
	if err != nil {
		return identity.Principal{}, errors.Join(ErrInvalidToken, err)
	}
	if p.TokenVersion != int(verFloat) {
		return identity.Principal{}, errors.Join(ErrInvalidToken, errors.New("token version invalidated"))
	}
	return p, nil
}
