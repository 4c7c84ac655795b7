// Package scanner runs the periodic mempool and recent-block scan
// loops that feed the live monitor.
package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/clock"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/detect"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// Source supplies candidate transaction ids and full transactions.
type Source interface {
	GetTransaction(ctx context.Context, txid string) (model.Transaction, error)
	RecentMempoolTxIDs(ctx context.Context) ([]string, error)
	RecentBlockTxIDs(ctx context.Context) ([]string, error)
}

// Classifier turns one transaction into detected activities.
type Classifier interface {
	Classify(tx model.Transaction) detect.Result
}

// Publisher receives classified transactions that matched at least one
// protocol.
type Publisher interface {
	Publish(lt model.LiveTransaction)
}

// Metrics records scan loop outcomes.
type Metrics interface {
	ObserveCycle(scanner string, err error, candidates int, started time.Time)
	ObserveFetchSkip(scanner string)
	ObserveMatch(scanner string, protocols []string)
}

// Scanner is one periodic scan loop. Listing failures and individual
// fetch failures never terminate the loop.
type Scanner struct {
	name       string
	list       func(context.Context) ([]string, error)
	source     Source
	classifier Classifier
	publisher  Publisher
	logger     *zap.Logger
	metrics    Metrics

	sleep      func(context.Context, time.Duration) error
	fetchDelay time.Duration
	cycleDelay time.Duration
	now        func() time.Time
}

// NewMempoolScanner builds the loop over recent mempool candidates.
func NewMempoolScanner(source Source, classifier Classifier, publisher Publisher, metrics Metrics, logger *zap.Logger) *Scanner {
	s := newScanner("mempool", source, classifier, publisher, metrics, logger)
	s.list = source.RecentMempoolTxIDs
	s.cycleDelay = mempoolCycleDelay
	return s
}

// NewBlockScanner builds the loop over the most recent block's
// candidates.
func NewBlockScanner(source Source, classifier Classifier, publisher Publisher, metrics Metrics, logger *zap.Logger) *Scanner {
	s := newScanner("blocks", source, classifier, publisher, metrics, logger)
	s.list = source.RecentBlockTxIDs
	s.cycleDelay = blockCycleDelay
	return s
}

func newScanner(name string, source Source, classifier Classifier, publisher Publisher, metrics Metrics, logger *zap.Logger) *Scanner {
	return &Scanner{
		name:       name,
		source:     source,
		classifier: classifier,
		publisher:  publisher,
		logger:     logger.Named(name + "Scanner"),
		metrics:    metrics,
		sleep:      clock.SleepWithContext,
		fetchDelay: fetchDelay,
		now:        time.Now,
	}
}

// Run executes scan cycles until the context is canceled.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("scan loop started", zap.Duration("cycle_delay", s.cycleDelay))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runCycle(ctx)
		if err := s.sleep(ctx, s.cycleDelay); err != nil {
			return err
		}
	}
}

func (s *Scanner) runCycle(ctx context.Context) {
	started := s.now()
	ids, err := s.list(ctx)
	if s.metrics != nil {
		s.metrics.ObserveCycle(s.name, err, len(ids), started)
	}
	if err != nil {
		// Source unavailable: retry on the next cycle.
		s.logger.Warn("listing candidates failed", zap.Error(err))
		return
	}

	for _, txid := range ids {
		if ctx.Err() != nil {
			return
		}
		s.processCandidate(ctx, txid)
		if err := s.sleep(ctx, s.fetchDelay); err != nil {
			return
		}
	}
}

func (s *Scanner) processCandidate(ctx context.Context, txid string) {
	tx, err := s.source.GetTransaction(ctx, txid)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveFetchSkip(s.name)
		}
		s.logger.Debug("skipping candidate", zap.String("txid", txid), zap.Error(err))
		return
	}

	res := s.classifier.Classify(tx)
	if len(res.Protocols) == 0 {
		return
	}

	lt := BuildLiveTransaction(tx, res, s.now())
	s.publisher.Publish(lt)
	if s.metrics != nil {
		s.metrics.ObserveMatch(s.name, res.Protocols)
	}
	s.logger.Info("metaprotocol activity detected",
		zap.String("txid", tx.TxID),
		zap.Strings("protocols", res.Protocols),
		zap.Int("activities", len(res.Activities)),
	)
}

// BuildLiveTransaction assembles the published form of a classified
// transaction.
func BuildLiveTransaction(tx model.Transaction, res detect.Result, ts time.Time) model.LiveTransaction {
	var feeRate float64
	if tx.Fee != nil && tx.Size > 0 {
		feeRate = float64(*tx.Fee) / float64(tx.Size)
	}
	return model.LiveTransaction{
		TxID:       tx.TxID,
		Timestamp:  ts,
		Protocols:  res.Protocols,
		TotalValue: tx.TotalValue(),
		Activities: res.Activities,
		FeeRate:    feeRate,
		Size:       tx.Size,
	}
}
