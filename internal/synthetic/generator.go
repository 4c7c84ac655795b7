// Package synthetic produces plausible metaprotocol activity without a
// transaction source. Output is fully deterministic for a given seed so
// demos and tests are reproducible.
package synthetic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/clock"
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// Knuth MMIX linear congruential constants.
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
)

var (
	protocols  = []string{"brc20", "runes", "stamps"}
	operations = []string{"deploy", "mint", "transfer"}
	ticks      = []string{"ORDI", "SATS", "MEME", "PEPE", "RATS", "TRAC"}
	runeNames  = []string{"UNCOMMON•GOODS", "DOG•GO•TO•THE•MOON", "SATOSHI•NAKAMOTO", "RSIC•GENESIS•RUNE"}
	amounts    = []string{"1000", "21000000", "420", "100000", "888888", "5000"}
)

// Publisher receives generated live transactions.
type Publisher interface {
	Publish(lt model.LiveTransaction)
}

// Generator derives a stream of live transactions from a seeded LCG.
// Every field choice advances the seed, so two generators with equal
// seeds emit identical sequences.
type Generator struct {
	seed      uint64
	publisher Publisher
	logger    *zap.Logger
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
}

// NewGenerator constructs a generator starting from seed.
func NewGenerator(seed uint64, publisher Publisher, logger *zap.Logger) *Generator {
	return &Generator{
		seed:      seed,
		publisher: publisher,
		logger:    logger.Named("synthetic"),
		sleep:     clock.SleepWithContext,
		now:       time.Now,
	}
}

func (g *Generator) next() uint64 {
	g.seed = g.seed*lcgMultiplier + lcgIncrement
	return g.seed
}

// Run publishes batches of 1-3 transactions with a pseudo-random pause
// between ticks until the context is canceled.
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Info("synthetic generation started", zap.Uint64("seed", g.seed))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := int(g.next()%3) + 1
		for i := 0; i < batch; i++ {
			lt := g.NextTransaction()
			g.publisher.Publish(lt)
		}
		delay := time.Duration(g.next()%4000+1000) * time.Millisecond
		if err := g.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// NextTransaction derives one live transaction carrying exactly one
// activity. The id is seed-derived and deliberately not shaped like a
// real 64-hex txid.
func (g *Generator) NextTransaction() model.LiveTransaction {
	protocol := protocols[g.next()%uint64(len(protocols))]
	activity := g.nextActivity(protocol)

	size := uint32(g.next()%800 + 150)
	fee := g.next()%50_000 + 1_000
	value := g.next()%5_000_000 + 10_000
	txid := fmt.Sprintf("sim-%016x", g.next())

	return model.LiveTransaction{
		TxID:       txid,
		Timestamp:  g.now(),
		Protocols:  []string{protocol},
		TotalValue: value,
		Activities: []model.Activity{activity},
		FeeRate:    float64(fee) / float64(size),
		Size:       size,
	}
}

func (g *Generator) nextActivity(protocol string) model.Activity {
	if protocol == "stamps" {
		return model.Activity{
			Protocol:    "stamps",
			Operation:   "stamp",
			Source:      model.SourceOutput,
			Description: "Bitcoin Stamp data embedded in output script",
			Importance:  6,
		}
	}

	op := operations[g.next()%uint64(len(operations))]
	var tick string
	if protocol == "runes" {
		tick = runeNames[g.next()%uint64(len(runeNames))]
	} else {
		tick = ticks[g.next()%uint64(len(ticks))]
	}
	amt := amounts[g.next()%uint64(len(amounts))]

	data := map[string]string{
		"tick":      tick,
		"operation": op,
	}
	if op != "deploy" {
		data["amount"] = amt
	} else {
		data["max_supply"] = amt
	}

	return model.Activity{
		Protocol:    protocol,
		Operation:   op,
		Source:      model.SourceOutput,
		Data:        data,
		Description: fmt.Sprintf("%s %s '%s'", titleOp(op), protocolLabel(protocol), tick),
		Importance:  syntheticImportance(protocol, op),
	}
}

func syntheticImportance(protocol, op string) uint8 {
	if protocol == "runes" {
		return 7
	}
	switch op {
	case "deploy":
		return 8
	case "mint":
		return 5
	default:
		return 3
	}
}

func titleOp(op string) string {
	switch op {
	case "deploy":
		return "Deploy"
	case "mint":
		return "Mint"
	default:
		return "Transfer"
	}
}

func protocolLabel(protocol string) string {
	if protocol == "runes" {
		return "rune"
	}
	return "BRC-20 token"
}
