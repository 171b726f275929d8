package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var funder = common.HexToAddress("0xf0f0000000000000000000000000000000000001")

// fund opens the given accounts and moves amount into the first one from
// an external account, the same way a deposit does.
func fund(t *testing.T, l *MemoryLedger, amount int64, codes ...string) {
	t.Helper()
	ctx := context.Background()
	src := ExternalAccountCode(funder)
	for _, code := range append([]string{src}, codes...) {
		require.NoError(t, l.EnsureAccount(ctx, code))
	}
	if amount > 0 {
		_, err := l.Transfer(ctx, src, codes[0], KindDeposit, "fund:"+codes[0], amount)
		require.NoError(t, err)
	}
}

func total(l *MemoryLedger) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum int64
	for _, b := range l.balances {
		sum += b
	}
	return sum
}

func TestMemoryLedger_TransferKeepsJournalBalanced(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	to := AccountCode(common.HexToAddress("0xb0"))
	fund(t, l, 10_000, CustodyAccountCode, to)

	res, err := l.Transfer(ctx, CustodyAccountCode, to, KindWithdrawal, "w-1", 1_500)
	require.NoError(t, err)
	require.Equal(t, int64(8_500), res.FromBalance)
	require.Equal(t, int64(1_500), res.ToBalance)
	require.Zero(t, total(l))

	journal := l.Journal()
	require.Len(t, journal, 2)
	require.Equal(t, KindWithdrawal, journal[1].Kind)
	require.Equal(t, res.TransactionID, journal[1].ID)
}

func TestMemoryLedger_DuplicateTransaction(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	dst := AccountCode(common.HexToAddress("0xb1"))
	fund(t, l, 5_000, CustodyAccountCode, dst)

	first, err := l.Transfer(ctx, CustodyAccountCode, dst, KindWithdrawal, "dup", 500)
	require.NoError(t, err)

	again, err := l.Transfer(ctx, CustodyAccountCode, dst, KindWithdrawal, "dup", 500)
	require.ErrorIs(t, err, ErrDuplicateTransaction)
	require.Equal(t, first, again)

	// Same client id under another kind is a different posting.
	_, err = l.Transfer(ctx, CustodyAccountCode, dst, KindDeposit, "dup", 1)
	require.NoError(t, err)

	b, err := l.Balance(ctx, CustodyAccountCode)
	require.NoError(t, err)
	require.Equal(t, int64(4_499), b)
}

func TestMemoryLedger_Rejections(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	dst := AccountCode(common.HexToAddress("0xb2"))
	fund(t, l, 100, CustodyAccountCode, dst)

	_, err := l.Transfer(ctx, CustodyAccountCode, dst, KindWithdrawal, "big", 101)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = l.Transfer(ctx, CustodyAccountCode, dst, KindWithdrawal, "zero", 0)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Transfer(ctx, CustodyAccountCode, "account:missing", KindWithdrawal, "u", 5)
	require.ErrorIs(t, err, ErrUnknownAccount)

	require.Len(t, l.Journal(), 1)
}

func TestMemoryLedger_RejectsBalanceOverflow(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	fund(t, l, math.MaxInt64, CustodyAccountCode)

	other := ExternalAccountCode(common.HexToAddress("0xa1"))
	require.NoError(t, l.EnsureAccount(ctx, other))
	_, err := l.Transfer(ctx, other, CustodyAccountCode, KindDeposit, "over", 1)
	require.ErrorIs(t, err, ErrBalanceOverflow)

	b, err := l.Balance(ctx, CustodyAccountCode)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), b)
	require.Len(t, l.Journal(), 1)
}

func TestMemoryLedger_ExternalAccountsMayOverdraw(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	from := ExternalAccountCode(common.HexToAddress("0xa0"))
	require.NoError(t, l.EnsureAccount(ctx, from))
	require.NoError(t, l.EnsureAccount(ctx, CustodyAccountCode))

	res, err := l.Transfer(ctx, from, CustodyAccountCode, KindDeposit, "d-1", 123)
	require.NoError(t, err)
	require.Equal(t, int64(-123), res.FromBalance)
	require.Equal(t, int64(123), res.ToBalance)
}

func TestMemoryLedger_ConcurrentTransfers(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	dst := AccountCode(common.HexToAddress("0xb3"))
	fund(t, l, 100_000, CustodyAccountCode, dst)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Transfer(ctx, CustodyAccountCode, dst, KindWithdrawal, fmt.Sprintf("tx-%d", i), 500)
			if err != nil {
				t.Errorf("transfer %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	require.Zero(t, total(l))
	b, err := l.Balance(ctx, dst)
	require.NoError(t, err)
	require.Equal(t, int64(workers*500), b)
}

func TestAccountCodesAreLowercaseHex(t *testing.T) {
	addr := common.HexToAddress("0xAbCdEf0000000000000000000000000000000001")
	require.Equal(t, "account:0xabcdef0000000000000000000000000000000001", AccountCode(addr))
	require.Equal(t, "external:0xabcdef0000000000000000000000000000000001", ExternalAccountCode(addr))
}
