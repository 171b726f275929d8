package identity

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

var addr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	p, err := svc.Register(ctx, Credentials{Address: addr, Secret: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, 0, p.TokenVersion)

	authed, err := svc.Authenticate(ctx, Credentials{Address: addr, Secret: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, p.ID, authed.ID)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Address: addr, Secret: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, Credentials{Address: addr, Secret: "battery staple"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, Credentials{Address: common.Address{}, Secret: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Address: addr, Secret: "short"})
	require.ErrorIs(t, err, apperrors.ErrInput)

	_, err = svc.Register(ctx, Credentials{Address: addr, Secret: "long enough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Credentials{Address: addr, Secret: "long enough"})
	require.ErrorIs(t, err, ErrExists)
}

func TestTokenVersionUpdates(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Register(ctx, Credentials{Address: addr, Secret: "long enough"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateTokenVersion(ctx, p.ID, 3))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, found.TokenVersion)

	err = repo.UpdateTokenVersion(ctx, "missing", 1)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
