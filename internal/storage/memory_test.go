package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryTransactorNestedAtomicJoins(t *testing.T) {
	tr := NewMemoryTransactor()
	ctx := context.Background()

	var inner bool
	err := tr.Atomic(ctx, func(ctx context.Context) error {
		require.True(t, InUnit(ctx))
		// A second Lock on the same mutex would deadlock; joining must not.
		return tr.Atomic(ctx, func(ctx context.Context) error {
			inner = true
			return nil
		})
	})
	require.NoError(t, err)
	require.True(t, inner)
}

func TestMemoryTransactorRejectsWriteInsideView(t *testing.T) {
	tr := NewMemoryTransactor()
	err := tr.View(context.Background(), func(ctx context.Context) error {
		return tr.Atomic(ctx, func(context.Context) error { return nil })
	})
	require.True(t, errors.Is(err, ErrReadOnly))
}

func TestMemoryTransactorSerialisesUnits(t *testing.T) {
	tr := NewMemoryTransactor()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		counter int
		active  int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Atomic(ctx, func(context.Context) error {
				active++
				if active != 1 {
					t.Errorf("units overlapped: %d active", active)
				}
				counter++
				active--
				return nil
			})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
}
