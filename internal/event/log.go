package event

import (
	"context"
	"sync"
	"time"
)

// Log is the append-only record of every emitted event. Append is called
// inside the unit of work of the call that emitted the events, so records
// become visible exactly when that call commits.
type Log interface {
	Append(ctx context.Context, events ...Event) ([]Record, error)
	// List returns up to limit records with Seq >= from, in order.
	List(ctx context.Context, from uint64, limit int) ([]Record, error)
}

type memoryLog struct {
	mu      sync.RWMutex
	records []Record
	now     func() time.Time
}

// NewMemoryLog builds an in-memory event log.
func NewMemoryLog() Log {
	return &memoryLog{now: time.Now}
}

func (l *memoryLog) Append(_ context.Context, events ...Event) ([]Record, error) {
	out := make([]Record, 0, len(events))
	for _, e := range events {
		rec, err := NewRecord(e, l.now())
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range out {
		out[i].Seq = uint64(len(l.records))
		l.records = append(l.records, out[i])
	}
	return out, nil
}

func (l *memoryLog) List(_ context.Context, from uint64, limit int) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if from >= uint64(len(l.records)) || limit <= 0 {
		return nil, nil
	}
	end := from + uint64(limit)
	if end > uint64(len(l.records)) {
		end = uint64(len(l.records))
	}
	out := make([]Record, end-from)
	copy(out, l.records[from:end])
	return out, nil
}
