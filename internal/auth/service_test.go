package auth

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/config"
	"github.com/congo-pay/quorum_wallet/internal/identity"
)

func newTestService(t *testing.T) (*Service, *identity.Service) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	cfg := config.Config{
		JWTSecret:       "access",
		RefreshSecret:   "refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	return NewService(cfg, repo), identity.NewService(repo)
}

func register(t *testing.T, ids *identity.Service, addr common.Address) identity.Principal {
	t.Helper()
	p, err := ids.Register(context.Background(), identity.Credentials{Address: addr, Secret: "long enough"})
	require.NoError(t, err)
	return p
}

func TestLoginTokensCarryTheAddress(t *testing.T) {
	svc, ids := newTestService(t)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000abc")
	p := register(t, ids, addr)

	pair, err := svc.Login(p)
	require.NoError(t, err)
	require.Equal(t, int64(60), pair.ExpiresIn)

	got, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, addr, got)

	_, err = svc.VerifyAccess(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are signed with another secret")
}

func TestLogoutInvalidatesTokens(t *testing.T) {
	svc, ids := newTestService(t)
	p := register(t, ids, common.HexToAddress("0x0000000000000000000000000000000000000def"))
	ctx := context.Background()

	pair, err := svc.Login(p)
	require.NoError(t, err)
	access, _, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.VerifyAccess(ctx, access)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokensAreRefused(t *testing.T) {
	svc, ids := newTestService(t)
	addr := common.HexToAddress("0x0000000000000000000000000000000000000123")
	register(t, ids, addr)
	ctx := context.Background()

	token, err := svc.IssueFor(ctx, addr, time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.VerifyAccess(ctx, token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := SignHS256(map[string]any{"sub": "x"}, []byte("k1"))
	require.NoError(t, err)

	_, err = ParseAndVerifyHS256(token, []byte("k2"), time.Now())
	require.Error(t, err)

	claims, err := ParseAndVerifyHS256(token, []byte("k1"), time.Now())
	require.NoError(t, err)
	require.Equal(t, "x", claims["sub"])
}
