package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Record is an event as stored in the log.
type Record struct {
	Seq       uint64          `json:"seq"`
	Name      string          `json:"name"`
	Topic     common.Hash     `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord encodes e. The sequence number is assigned by the log.
func NewRecord(e Event, now time.Time) (Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", e.Name(), err)
	}
	return Record{
		Name:      e.Name(),
		Topic:     Topic(e),
		Payload:   payload,
		CreatedAt: now.UTC(),
	}, nil
}

// Decode turns the record back into its typed event.
func (r Record) Decode() (Event, error) {
	var (
		e   Event
		err error
	)
	switch r.Name {
	case NameGroupCreated:
		e, err = decode[GroupCreated](r.Payload)
	case NameSigned:
		e, err = decode[Signed](r.Payload)
	case NameCompleted:
		e, err = decode[Completed](r.Payload)
	case NameWalletCreated:
		e, err = decode[WalletCreated](r.Payload)
	case NameWalletDeposited:
		e, err = decode[WalletDeposited](r.Payload)
	case NameWithdrawalProposed:
		e, err = decode[WithdrawalProposed](r.Payload)
	case NameWithdrawalCanceled:
		e, err = decode[WithdrawalCanceled](r.Payload)
	case NameWithdrawalExecuted:
		e, err = decode[WithdrawalExecuted](r.Payload)
	default:
		return nil, fmt.Errorf("unknown event %q", r.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Name, err)
	}
	return e, nil
}

func decode[T Event](payload []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return v, nil
}
