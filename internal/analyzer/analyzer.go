// Package analyzer builds one-shot analysis reports for single
// transactions, bypassing the live monitor entirely.
package analyzer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/detect"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// TxFetcher fetches one transaction by id.
type TxFetcher interface {
	GetTransaction(ctx context.Context, txid string) (model.Transaction, error)
}

// Classifier turns one transaction into detected activities.
type Classifier interface {
	Classify(tx model.Transaction) detect.Result
}

// Service performs one-shot transaction analysis.
type Service struct {
	source     TxFetcher
	classifier Classifier
	logger     *zap.Logger
}

// New constructs the analysis service.
func New(source TxFetcher, classifier Classifier, logger *zap.Logger) *Service {
	return &Service{
		source:     source,
		classifier: classifier,
		logger:     logger.Named("analyzer"),
	}
}

// Analyze fetches and classifies the transaction and assembles the
// report. Fetch errors (including unknown ids) surface to the caller
// unchanged.
func (s *Service) Analyze(ctx context.Context, txid string) (model.AnalysisReport, error) {
	tx, err := s.source.GetTransaction(ctx, txid)
	if err != nil {
		return model.AnalysisReport{}, err
	}

	res := s.classifier.Classify(tx)
	s.logger.Debug("transaction analyzed",
		zap.String("txid", txid),
		zap.Int("activities", len(res.Activities)),
	)

	totalValue := tx.TotalValue()
	report := model.AnalysisReport{
		TxID:              tx.TxID,
		Size:              tx.Size,
		Fee:               tx.Fee,
		FeeRate:           feeRate(tx),
		Confirmations:     confirmations(tx.Status),
		TotalValue:        totalValue,
		TotalValueBTC:     satsToBTCString(totalValue),
		ProtocolsDetected: protocolList(res),
		Activities:        res.Activities,
		IsMetaprotocol:    len(res.Activities) > 0,
		MaxImportance:     maxImportance(res.Activities),
		TotalStateChanges: totalStateChanges(res.Activities),
		Summary:           summarize(res),
	}
	return report, nil
}

func feeRate(tx model.Transaction) float64 {
	if tx.Fee == nil || tx.Size == 0 {
		return 0
	}
	return float64(*tx.Fee) / float64(tx.Size)
}

func confirmations(status model.TxStatus) uint32 {
	if status.Confirmed {
		return 1
	}
	return 0
}

// satsToBTCString renders the value in the decimal major unit without
// float rounding.
func satsToBTCString(sats uint64) string {
	return decimal.NewFromUint64(sats).Shift(-8).String()
}

func protocolList(res detect.Result) []string {
	if res.Protocols == nil {
		return []string{}
	}
	return res.Protocols
}

func maxImportance(activities []model.Activity) uint8 {
	var max uint8
	for _, a := range activities {
		if a.Importance > max {
			max = a.Importance
		}
	}
	return max
}

func totalStateChanges(activities []model.Activity) int {
	total := 0
	for _, a := range activities {
		total += len(a.Changes)
	}
	return total
}

func summarize(res detect.Result) model.Summary {
	operations := make([]string, 0, len(res.Activities))
	for _, a := range res.Activities {
		operations = append(operations, fmt.Sprintf("%s:%s", a.Protocol, a.Operation))
	}
	return model.Summary{
		TotalActivities: len(res.Activities),
		Protocols:       protocolList(res),
		Operations:      operations,
	}
}
