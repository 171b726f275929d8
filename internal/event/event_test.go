package event

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestTopicIsKeccakOfSignature(t *testing.T) {
	e := Signed{GroupID: 3, Signer: alice}
	require.Equal(t, crypto.Keccak256Hash([]byte("Signed(uint256,address)")), Topic(e))
	require.NotEqual(t, Topic(e), Topic(Completed{GroupID: 3}))
}

func TestFieldsArePositional(t *testing.T) {
	e := WithdrawalProposed{WalletID: 1, Creator: alice, To: bob, ApprovalGroupID: 9, Amount: 100}
	require.Equal(t, []any{uint64(1), alice, bob, uint64(9), int64(100)}, e.Fields())
}

func TestRecordDecodeRestoresTypedEvent(t *testing.T) {
	original := GroupCreated{GroupID: 2, Quorum: 2, Signers: []common.Address{alice, bob, bob}}
	rec, err := NewRecord(original, time.Unix(0, 0))
	require.NoError(t, err)
	require.Equal(t, NameGroupCreated, rec.Name)

	decoded, err := rec.Decode()
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestRecordDecodeUnknownName(t *testing.T) {
	_, err := Record{Name: "Nope", Payload: []byte(`{}`)}.Decode()
	require.Error(t, err)
}

func TestMemoryLogAssignsDenseSeqs(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()

	recs, err := log.Append(ctx, Signed{GroupID: 0, Signer: alice}, Completed{GroupID: 0})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, uint64(0), recs[0].Seq)
	require.Equal(t, uint64(1), recs[1].Seq)

	_, err = log.Append(ctx, Signed{GroupID: 0, Signer: bob})
	require.NoError(t, err)

	page, err := log.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, NameCompleted, page[0].Name)
	require.Equal(t, uint64(2), page[1].Seq)

	empty, err := log.List(ctx, 3, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}
