package synthetic

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

type capturingPublisher struct {
	published []model.LiveTransaction
	cancel    context.CancelFunc
	limit     int
}

func (p *capturingPublisher) Publish(lt model.LiveTransaction) {
	p.published = append(p.published, lt)
	if p.cancel != nil && len(p.published) >= p.limit {
		p.cancel()
	}
}

func fixedNow() time.Time {
	return time.Unix(1_700_000_000, 0).UTC()
}

func TestGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(42, nil, zap.NewNop())
	b := NewGenerator(42, nil, zap.NewNop())
	a.now = fixedNow
	b.now = fixedNow

	for i := 0; i < 50; i++ {
		require.Equal(t, a.NextTransaction(), b.NextTransaction(), "sequence diverged at element %d", i)
	}
}

func TestGenerator_SeedsDiverge(t *testing.T) {
	t.Parallel()

	a := NewGenerator(1, nil, zap.NewNop())
	b := NewGenerator(2, nil, zap.NewNop())
	a.now = fixedNow
	b.now = fixedNow

	diverged := false
	for i := 0; i < 10; i++ {
		if a.NextTransaction().TxID != b.NextTransaction().TxID {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "different seeds should produce different streams")
}

func TestGenerator_TransactionShape(t *testing.T) {
	t.Parallel()

	g := NewGenerator(7, nil, zap.NewNop())
	g.now = fixedNow

	for i := 0; i < 100; i++ {
		lt := g.NextTransaction()
		assert.True(t, strings.HasPrefix(lt.TxID, "sim-"), "synthetic id must be format-distinct from real txids")
		require.Len(t, lt.Protocols, 1)
		require.Len(t, lt.Activities, 1)
		a := lt.Activities[0]
		assert.Equal(t, lt.Protocols[0], a.Protocol)
		assert.NotEmpty(t, a.Operation)
		assert.NotZero(t, a.Importance)
		assert.LessOrEqual(t, a.Importance, uint8(10))
		assert.GreaterOrEqual(t, lt.Size, uint32(150))
		assert.Less(t, lt.Size, uint32(950))
		assert.Greater(t, lt.FeeRate, 0.0)
		assert.GreaterOrEqual(t, lt.TotalValue, uint64(10_000))
	}
}

func TestGenerator_RunPublishesBatches(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &capturingPublisher{cancel: cancel, limit: 5}
	g := NewGenerator(3, pub, zap.NewNop())
	g.now = fixedNow
	g.sleep = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}

	err := g.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, len(pub.published), 5)
}
