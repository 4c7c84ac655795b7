package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// runesPrefix is OP_RETURN followed by the OP_13 sub-protocol tag.
const runesPrefix = "6a5d"

// runesImportance is the fixed per-protocol score for runes activity.
const runesImportance = 7

// RunesDetector finds runes-style token operations in OP_RETURN outputs
// tagged with the OP_13 prefix.
type RunesDetector struct {
	pattern *regexp.Regexp
}

// NewRunesDetector constructs the detector.
func NewRunesDetector() *RunesDetector {
	return &RunesDetector{pattern: envelopePattern("runes")}
}

// Protocol returns the protocol name reported on activities.
func (d *RunesDetector) Protocol() string { return "runes" }

// Detect scans outputs only; runes payloads do not ride witness stacks.
func (d *RunesDetector) Detect(tx model.Transaction) []model.Activity {
	var activities []model.Activity
	for idx, out := range tx.Vout {
		script := strings.ToLower(out.ScriptPubKey)
		if !strings.HasPrefix(script, runesPrefix) {
			continue
		}
		// Skip the tagged prefix plus length byte.
		if len(script) <= 6 {
			continue
		}
		text, ok := decodeHexText(script[6:])
		if !ok {
			continue
		}
		payload, ok := extractPayload(text, d.pattern)
		if !ok {
			continue
		}
		activities = append(activities, model.Activity{
			Protocol:    d.Protocol(),
			Operation:   payload.Op,
			Index:       idx,
			Source:      model.SourceOutput,
			Data:        payload.data(),
			Changes:     payload.stateChanges(),
			Description: runesDescription(payload),
			Importance:  runesImportance,
			RawScript:   script,
		})
	}
	return activities
}

func runesDescription(p tokenPayload) string {
	switch p.Op {
	case "deploy":
		return fmt.Sprintf("Etch rune '%s' with max supply %s", p.Tick, orNA(p.Max, p.HasMax))
	case "mint":
		return fmt.Sprintf("Mint %s of rune '%s'", orNA(p.Amt, p.HasAmt), p.Tick)
	case "transfer":
		return fmt.Sprintf("Transfer %s of rune '%s'", orNA(p.Amt, p.HasAmt), p.Tick)
	default:
		return fmt.Sprintf("Unknown %s operation", p.Op)
	}
}
