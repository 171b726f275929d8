// Package ledger is the value-transfer primitive the wallet ledger pays
// through. Every movement is a balanced double-entry posting between two
// accounts, keyed by (kind, client transaction id) so that replaying a
// posting cannot move funds twice.
//
// Three families of accounts exist: the custody account holding the sum
// of all wallet balances, external accounts funds arrive from, and
// destination accounts withdrawals pay out to.
package ledger

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks available balance
	// to cover a requested posting.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateTransaction indicates the provided client transaction identifier
	// already exists and therefore the operation should be treated as idempotent.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrUnknownAccount is returned when a posting names an account that was
	// never ensured.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrBalanceOverflow is returned when a posting would carry an account
	// balance outside the int64 range.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrInvalidAmount is returned for non-positive postings.
	ErrInvalidAmount = errors.New("amount must be positive")
)

const (
	// CustodyAccountCode holds the funds of every wallet.
	CustodyAccountCode = "custody:wallets"

	// KindDeposit tags postings from an external account into custody.
	KindDeposit = "deposit"
	// KindWithdrawal tags payouts from custody to a destination account.
	KindWithdrawal = "withdrawal"

	externalPrefix = "external:"
	accountPrefix  = "account:"
)

// ExternalAccountCode is the account deposits by addr are drawn from. It
// stands for funds outside custody and may go negative.
func ExternalAccountCode(addr common.Address) string {
	return externalPrefix + strings.ToLower(addr.Hex())
}

// AccountCode is the account withdrawals to addr are credited to.
func AccountCode(addr common.Address) string {
	return accountPrefix + strings.ToLower(addr.Hex())
}

// fits reports whether moving amount (positive) from a balance of from to
// a balance of to keeps both within int64.
func fits(from, to, amount int64) bool {
	return to <= math.MaxInt64-amount && from >= math.MinInt64+amount
}

func overdraftAllowed(code string) bool {
	return strings.HasPrefix(code, externalPrefix)
}

// TransactionResult captures the outcome of a ledger posting.
type TransactionResult struct {
	TransactionID string
	FromBalance   int64
	ToBalance     int64
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
type Ledger interface {
	EnsureAccount(ctx context.Context, code string) error
	Balance(ctx context.Context, code string) (int64, error)
	Transfer(ctx context.Context, fromCode, toCode, kind, clientTxID string, amount int64) (TransactionResult, error)
}
