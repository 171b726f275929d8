package wallet

import (
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the lifecycle state of a withdrawal. Canceled and Executed
// are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusCanceled Status = "canceled"
	StatusExecuted Status = "executed"
)

// Wallet is a custodial balance controlled by a quorum of signers.
// Quorum and Signers never change after creation.
type Wallet struct {
	ID        uint64           `json:"id"`
	Creator   common.Address   `json:"creator"`
	Quorum    uint64           `json:"quorum"`
	Signers   []common.Address `json:"signers"`
	Balance   int64            `json:"balance"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsSigner reports whether addr appears in the signer list.
func (w Wallet) IsSigner(addr common.Address) bool {
	return slices.Contains(w.Signers, addr)
}

func (w Wallet) clone() Wallet {
	w.Signers = slices.Clone(w.Signers)
	return w
}

// Withdrawal is a proposed payout gated on its own approval group.
type Withdrawal struct {
	ID              uint64         `json:"id"`
	WalletID        uint64         `json:"wallet_id"`
	Creator         common.Address `json:"creator"`
	To              common.Address `json:"to"`
	ApprovalGroupID uint64         `json:"approval_group_id"`
	Amount          int64          `json:"amount"`
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
