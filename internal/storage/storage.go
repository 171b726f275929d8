// Package storage provides the unit of work every state-changing call of
// the registry and the wallet ledger runs in. A unit serialises against
// all other units, so calls observe a single global order, and it either
// commits every write it made or none of them.
package storage

import (
	"context"
	"errors"
)

// ErrReadOnly is returned when Atomic is called from inside a View unit.
var ErrReadOnly = errors.New("storage: write attempted inside a read-only unit")

// Transactor runs functions inside units of work. Nested calls join the
// unit already carried by ctx instead of opening a new one.
type Transactor interface {
	// Atomic runs fn exclusively. Any error returned by fn discards the
	// unit's writes.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
	// View runs fn against a consistent snapshot of committed state.
	View(ctx context.Context, fn func(ctx context.Context) error) error
}

type unitMode int

const (
	modeRead unitMode = iota + 1
	modeWrite
)

type unitKey struct{}

type unit struct {
	mode unitMode
	tx   any
}

func withUnit(ctx context.Context, u unit) context.Context {
	return context.WithValue(ctx, unitKey{}, u)
}

func unitFrom(ctx context.Context) (unit, bool) {
	u, ok := ctx.Value(unitKey{}).(unit)
	return u, ok
}

// InUnit reports whether ctx is already inside a unit of work.
func InUnit(ctx context.Context) bool {
	_, ok := unitFrom(ctx)
	return ok
}
