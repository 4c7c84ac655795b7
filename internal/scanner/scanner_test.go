package scanner

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/detect"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

type fakeSource struct {
	mempool    []string
	block      []string
	listErr    error
	txs        map[string]model.Transaction
	fetchCalls []string
}

func (f *fakeSource) GetTransaction(_ context.Context, txid string) (model.Transaction, error) {
	f.fetchCalls = append(f.fetchCalls, txid)
	tx, ok := f.txs[txid]
	if !ok {
		return model.Transaction{}, errors.New("not found")
	}
	return tx, nil
}

func (f *fakeSource) RecentMempoolTxIDs(context.Context) ([]string, error) {
	return f.mempool, f.listErr
}

func (f *fakeSource) RecentBlockTxIDs(context.Context) ([]string, error) {
	return f.block, f.listErr
}

type fakePublisher struct {
	published []model.LiveTransaction
}

func (f *fakePublisher) Publish(lt model.LiveTransaction) {
	f.published = append(f.published, lt)
}

type fakeMetrics struct {
	cycles  int
	skips   int
	matches []string
}

func (f *fakeMetrics) ObserveCycle(string, error, int, time.Time) { f.cycles++ }
func (f *fakeMetrics) ObserveFetchSkip(string)                    { f.skips++ }
func (f *fakeMetrics) ObserveMatch(_ string, protocols []string) {
	f.matches = append(f.matches, protocols...)
}

func brc20Tx(txid string) model.Transaction {
	fee := uint64(1200)
	payload := hex.EncodeToString([]byte(`{"p":"brc-20","op":"mint","tick":"ordi","amt":"1000"}`))
	return model.Transaction{
		TxID: txid,
		Size: 240,
		Fee:  &fee,
		Vout: []model.Output{{ScriptPubKey: "6a4c" + payload, Value: 546}},
	}
}

func plainTx(txid string) model.Transaction {
	return model.Transaction{
		TxID: txid,
		Size: 225,
		Vout: []model.Output{{ScriptPubKey: "0014751e76e8199196d454941c45d1b3a323f1433bd6", Value: 30_000}},
	}
}

func newTestScanner(source *fakeSource, pub *fakePublisher, m Metrics) *Scanner {
	s := NewMempoolScanner(source, detect.NewClassifier(detect.DefaultDetectors()...), pub, m, zap.NewNop())
	s.sleep = func(context.Context, time.Duration) error { return nil }
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0).UTC() }
	return s
}

func TestScanner_PublishesOnlyMatches(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		mempool: []string{"match", "missing", "plain"},
		txs: map[string]model.Transaction{
			"match": brc20Tx("match"),
			"plain": plainTx("plain"),
		},
	}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	s := newTestScanner(source, pub, m)

	s.runCycle(context.Background())

	// All candidates were attempted in listing order despite the
	// missing one.
	assert.Equal(t, []string{"match", "missing", "plain"}, source.fetchCalls)
	require.Len(t, pub.published, 1)
	lt := pub.published[0]
	assert.Equal(t, "match", lt.TxID)
	assert.Equal(t, []string{"brc20"}, lt.Protocols)
	assert.Equal(t, uint64(546), lt.TotalValue)
	assert.InDelta(t, 5.0, lt.FeeRate, 0.001)
	assert.Equal(t, 1, m.skips)
	assert.Equal(t, []string{"brc20"}, m.matches)
}

func TestScanner_ListingFailureRecovered(t *testing.T) {
	t.Parallel()

	source := &fakeSource{listErr: errors.New("esplora down")}
	pub := &fakePublisher{}
	m := &fakeMetrics{}
	s := newTestScanner(source, pub, m)

	s.runCycle(context.Background())

	assert.Empty(t, pub.published)
	assert.Empty(t, source.fetchCalls)
	assert.Equal(t, 1, m.cycles)
}

func TestScanner_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{}
	s := newTestScanner(source, &fakePublisher{}, nil)

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanner_BlockScannerUsesBlockListing(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		mempool: []string{"mempool-only"},
		block:   []string{"block-tx"},
		txs: map[string]model.Transaction{
			"block-tx": brc20Tx("block-tx"),
		},
	}
	pub := &fakePublisher{}
	s := NewBlockScanner(source, detect.NewClassifier(detect.DefaultDetectors()...), pub, nil, zap.NewNop())
	s.sleep = func(context.Context, time.Duration) error { return nil }

	s.runCycle(context.Background())

	require.Len(t, pub.published, 1)
	assert.Equal(t, "block-tx", pub.published[0].TxID)
}

func TestBuildLiveTransaction_NoFee(t *testing.T) {
	t.Parallel()

	tx := plainTx("x")
	res := detect.Result{Protocols: []string{"stamps"}}
	ts := time.Unix(9, 0).UTC()

	lt := BuildLiveTransaction(tx, res, ts)
	assert.Zero(t, lt.FeeRate)
	assert.Equal(t, ts, lt.Timestamp)
	assert.Equal(t, uint64(30_000), lt.TotalValue)
}
