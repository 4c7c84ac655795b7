package analyzer

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/detect"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

type fakeFetcher struct {
	tx  model.Transaction
	err error
}

func (f *fakeFetcher) GetTransaction(context.Context, string) (model.Transaction, error) {
	return f.tx, f.err
}

func newService(f *fakeFetcher) *Service {
	return New(f, detect.NewClassifier(detect.DefaultDetectors()...), zap.NewNop())
}

func TestAnalyze_MetaprotocolTransaction(t *testing.T) {
	t.Parallel()

	fee := uint64(2100)
	payload := hex.EncodeToString([]byte(`{"p":"brc-20","op":"deploy","tick":"ordi","max":"21000000"}`))
	confirmed := model.TxStatus{Confirmed: true}
	f := &fakeFetcher{tx: model.Transaction{
		TxID:   "deploy-tx",
		Size:   420,
		Fee:    &fee,
		Status: confirmed,
		Vout: []model.Output{
			{ScriptPubKey: "6a4c" + payload, Value: 0},
			{ScriptPubKey: "0014751e76e8199196d454941c45d1b3a323f1433bd6", Value: 10_000},
		},
	}}

	report, err := newService(f).Analyze(context.Background(), "deploy-tx")
	require.NoError(t, err)

	assert.Equal(t, "deploy-tx", report.TxID)
	assert.Equal(t, uint32(420), report.Size)
	assert.InDelta(t, 5.0, report.FeeRate, 0.001)
	assert.Equal(t, uint32(1), report.Confirmations)
	assert.Equal(t, uint64(10_000), report.TotalValue)
	assert.Equal(t, "0.0001", report.TotalValueBTC)
	assert.Equal(t, []string{"brc20"}, report.ProtocolsDetected)
	assert.True(t, report.IsMetaprotocol)
	assert.Equal(t, uint8(8), report.MaxImportance)
	assert.Equal(t, 2, report.TotalStateChanges)
	assert.Equal(t, 1, report.Summary.TotalActivities)
	assert.Equal(t, []string{"brc20:deploy"}, report.Summary.Operations)
}

func TestAnalyze_PlainTransaction(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{tx: model.Transaction{
		TxID: "plain-tx",
		Size: 225,
		Vout: []model.Output{{ScriptPubKey: "76a91462e907b15cbf27d5425399ebf6f0fb50ebb88f1888ac", Value: 123_456_789}},
	}}

	report, err := newService(f).Analyze(context.Background(), "plain-tx")
	require.NoError(t, err)

	assert.False(t, report.IsMetaprotocol)
	assert.Zero(t, report.MaxImportance)
	assert.Empty(t, report.Activities)
	assert.Equal(t, []string{}, report.ProtocolsDetected)
	assert.Equal(t, "1.23456789", report.TotalValueBTC)
	assert.Zero(t, report.FeeRate)
	assert.Zero(t, report.Confirmations)
}

func TestAnalyze_FetchErrorSurfaces(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("transaction not found")
	f := &fakeFetcher{err: wantErr}

	_, err := newService(f).Analyze(context.Background(), "missing")
	require.ErrorIs(t, err, wantErr)
}
