package multisig

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
	"github.com/congo-pay/quorum_wallet/internal/event"
	"github.com/congo-pay/quorum_wallet/internal/metrics"
	"github.com/congo-pay/quorum_wallet/internal/storage"
)

const component = "multisig"

// Registry owns the approval groups.
type Registry struct {
	repo    Repository
	tx      storage.Transactor
	events  event.Log
	metrics *metrics.Metrics
}

// NewRegistry builds a registry. m may be nil.
func NewRegistry(repo Repository, tx storage.Transactor, events event.Log, m *metrics.Metrics) *Registry {
	return &Registry{repo: repo, tx: tx, events: events, metrics: m}
}

// CreateGroup appends a new approval group and returns its id together
// with the GroupCreated event. Called inside another unit it joins it.
// More than MaxSigners signers fails with ErrInput.
func (r *Registry) CreateGroup(ctx context.Context, quorum uint64, signers []common.Address) (id uint64, events []event.Event, err error) {
	defer func(start time.Time) { r.metrics.Observe(component, "create_group", start, err) }(time.Now())

	if quorum == 0 {
		return 0, nil, fmt.Errorf("quorum must be positive: %w", apperrors.ErrInput)
	}
	if len(signers) > MaxSigners {
		return 0, nil, fmt.Errorf("%d signers exceeds limit of %d: %w", len(signers), MaxSigners, apperrors.ErrInput)
	}

	err = r.tx.Atomic(ctx, func(ctx context.Context) error {
		var err error
		id, err = r.repo.Create(ctx, Group{Quorum: quorum, Signers: slices.Clone(signers)})
		if err != nil {
			return fmt.Errorf("store approval group: %w", err)
		}
		events = []event.Event{event.GroupCreated{GroupID: id, Quorum: quorum, Signers: slices.Clone(signers)}}
		_, err = r.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return id, events, nil
}

// Sign records signer's approval of group id.
//
// Signing a completed group is a no-op returning no events and no error.
// Signing twice while the group is open fails with ErrDuplicateSignature.
func (r *Registry) Sign(ctx context.Context, id uint64, signer common.Address) (events []event.Event, err error) {
	defer func(start time.Time) { r.metrics.Observe(component, "sign", start, err) }(time.Now())

	err = r.tx.Atomic(ctx, func(ctx context.Context) error {
		g, err := r.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if g.Completed {
			return nil
		}
		if g.HasSigned(signer) {
			return fmt.Errorf("approval group %d signer %s: %w", id, signer.Hex(), apperrors.ErrDuplicateSignature)
		}

		g.Approvers = append(g.Approvers, signer)
		g.ApprovalCount += g.Occurrences(signer)
		events = append(events, event.Signed{GroupID: id, Signer: signer})
		if g.ApprovalCount >= g.Quorum {
			g.Completed = true
			events = append(events, event.Completed{GroupID: id})
		}

		if err := r.repo.Update(ctx, g); err != nil {
			return fmt.Errorf("store approval group: %w", err)
		}
		_, err = r.events.Append(ctx, events...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Group returns a snapshot of group id.
func (r *Registry) Group(ctx context.Context, id uint64) (Group, error) {
	var g Group
	err := r.tx.View(ctx, func(ctx context.Context) error {
		var err error
		g, err = r.repo.Get(ctx, id)
		return err
	})
	return g, err
}

// IsComplete reports whether group id reached its quorum.
func (r *Registry) IsComplete(ctx context.Context, id uint64) (bool, error) {
	g, err := r.Group(ctx, id)
	if err != nil {
		return false, err
	}
	return g.Completed, nil
}

// Quorum returns the quorum of group id.
func (r *Registry) Quorum(ctx context.Context, id uint64) (uint64, error) {
	g, err := r.Group(ctx, id)
	if err != nil {
		return 0, err
	}
	return g.Quorum, nil
}

// Signers returns the signer list of group id, repeats included.
func (r *Registry) Signers(ctx context.Context, id uint64) ([]common.Address, error) {
	g, err := r.Group(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Signers, nil
}

// HasSigned reports whether addr signed group id.
func (r *Registry) HasSigned(ctx context.Context, id uint64, addr common.Address) (bool, error) {
	g, err := r.Group(ctx, id)
	if err != nil {
		return false, err
	}
	return g.HasSigned(addr), nil
}
