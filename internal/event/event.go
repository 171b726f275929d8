// Package event defines the notifications emitted by the multisig
// registry and the wallet ledger, and the append-only log they are
// recorded in.
//
// Every event carries a name, an ABI-style signature whose keccak256 hash
// is the event topic, and its fields in positional order so consumers can
// decode them the same way they would decode a contract log.
package event

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event is a typed notification record.
type Event interface {
	Name() string
	Signature() string
	Fields() []any
}

// Topic returns the keccak256 hash of the event signature.
func Topic(e Event) common.Hash {
	return crypto.Keccak256Hash([]byte(e.Signature()))
}

const (
	NameGroupCreated       = "GroupCreated"
	NameSigned             = "Signed"
	NameCompleted          = "Completed"
	NameWalletCreated      = "WalletCreated"
	NameWalletDeposited    = "WalletDeposited"
	NameWithdrawalProposed = "WithdrawalProposed"
	NameWithdrawalCanceled = "WithdrawalCanceled"
	NameWithdrawalExecuted = "WithdrawalExecuted"
)

// GroupCreated is emitted when an approval group is appended to the registry.
type GroupCreated struct {
	GroupID uint64           `json:"group_id"`
	Quorum  uint64           `json:"quorum"`
	Signers []common.Address `json:"signers"`
}

func (GroupCreated) Name() string      { return NameGroupCreated }
func (GroupCreated) Signature() string { return "GroupCreated(uint256,uint256,address[])" }
func (e GroupCreated) Fields() []any   { return []any{e.GroupID, e.Quorum, e.Signers} }

// Signed is emitted when an identity signs an open group.
type Signed struct {
	GroupID uint64         `json:"group_id"`
	Signer  common.Address `json:"signer"`
}

func (Signed) Name() string      { return NameSigned }
func (Signed) Signature() string { return "Signed(uint256,address)" }
func (e Signed) Fields() []any   { return []any{e.GroupID, e.Signer} }

// Completed is emitted once, in the same call as the Signed event that
// pushed the approval count to the quorum.
type Completed struct {
	GroupID uint64 `json:"group_id"`
}

func (Completed) Name() string      { return NameCompleted }
func (Completed) Signature() string { return "Completed(uint256)" }
func (e Completed) Fields() []any   { return []any{e.GroupID} }

// WalletCreated is emitted when a wallet is created.
type WalletCreated struct {
	WalletID uint64           `json:"wallet_id"`
	Creator  common.Address   `json:"creator"`
	Quorum   uint64           `json:"quorum"`
	Signers  []common.Address `json:"signers"`
}

func (WalletCreated) Name() string { return NameWalletCreated }
func (WalletCreated) Signature() string {
	return "WalletCreated(uint256,address,uint256,address[])"
}
func (e WalletCreated) Fields() []any { return []any{e.WalletID, e.Creator, e.Quorum, e.Signers} }

// WalletDeposited is emitted when funds are credited to a wallet.
type WalletDeposited struct {
	WalletID uint64         `json:"wallet_id"`
	Sender   common.Address `json:"sender"`
	Amount   int64          `json:"amount"`
}

func (WalletDeposited) Name() string      { return NameWalletDeposited }
func (WalletDeposited) Signature() string { return "WalletDeposited(uint256,address,uint256)" }
func (e WalletDeposited) Fields() []any   { return []any{e.WalletID, e.Sender, e.Amount} }

// WithdrawalProposed is emitted after the GroupCreated event of the
// withdrawal's dedicated approval group.
type WithdrawalProposed struct {
	WalletID        uint64         `json:"wallet_id"`
	Creator         common.Address `json:"creator"`
	To              common.Address `json:"to"`
	ApprovalGroupID uint64         `json:"approval_group_id"`
	Amount          int64          `json:"amount"`
}

func (WithdrawalProposed) Name() string { return NameWithdrawalProposed }
func (WithdrawalProposed) Signature() string {
	return "WithdrawalProposed(uint256,address,address,uint256,uint256)"
}
func (e WithdrawalProposed) Fields() []any {
	return []any{e.WalletID, e.Creator, e.To, e.ApprovalGroupID, e.Amount}
}

// WithdrawalCanceled is emitted when the creator cancels a pending withdrawal.
type WithdrawalCanceled struct {
	WithdrawalID uint64         `json:"withdrawal_id"`
	Sender       common.Address `json:"sender"`
}

func (WithdrawalCanceled) Name() string      { return NameWithdrawalCanceled }
func (WithdrawalCanceled) Signature() string { return "WithdrawalCanceled(uint256,address)" }
func (e WithdrawalCanceled) Fields() []any   { return []any{e.WithdrawalID, e.Sender} }

// WithdrawalExecuted is emitted when a withdrawal pays out.
type WithdrawalExecuted struct {
	WithdrawalID uint64         `json:"withdrawal_id"`
	Sender       common.Address `json:"sender"`
	To           common.Address `json:"to"`
	Amount       int64          `json:"amount"`
}

func (WithdrawalExecuted) Name() string { return NameWithdrawalExecuted }
func (WithdrawalExecuted) Signature() string {
	return "WithdrawalExecuted(uint256,address,address,uint256)"
}
func (e WithdrawalExecuted) Fields() []any {
	return []any{e.WithdrawalID, e.Sender, e.To, e.Amount}
}

// Names returns the names of the given events in order.
func Names(events []Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name()
	}
	return names
}

// Envelope is the wire form of an event returned by the API.
type Envelope struct {
	Name  string      `json:"name"`
	Topic common.Hash `json:"topic"`
	Data  Event       `json:"data"`
}

// Envelopes wraps events for an API response, keeping emission order.
func Envelopes(events []Event) []Envelope {
	out := make([]Envelope, len(events))
	for i, e := range events {
		out[i] = Envelope{Name: e.Name(), Topic: Topic(e), Data: e}
	}
	return out
}
