package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/quorum_wallet/internal/apperrors"
)

func TestObserveLabelsOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Observe("wallet", "execute", time.Now(), nil)
	m.Observe("wallet", "execute", time.Now(), fmt.Errorf("w: %w", apperrors.ErrQuorumNotMet))
	m.Observe("wallet", "execute", time.Now(), fmt.Errorf("w: %w", apperrors.ErrQuorumNotMet))

	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("wallet", "execute", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("wallet", "execute", "quorum_not_met")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Observe("multisig", "sign", time.Now(), nil)
	m.ObserveRequest("GET", "/", 200)
	m.Relayed(3)
}
