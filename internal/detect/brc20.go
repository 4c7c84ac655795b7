package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

const (
	// opReturnPrefix is the data-carrier opcode marker in script hex.
	opReturnPrefix = "6a"
	// ordMarkerHex is the "ord" tag inside inscription envelopes.
	ordMarkerHex = "6f7264"
	// ordPayloadOffset is the number of hex characters skipped from the
	// start of the marker before the content window begins. Heuristic
	// inherited from the upstream envelope format, not proper script
	// parsing.
	ordPayloadOffset = 20
)

// BRC20Detector finds BRC-20 token operations in OP_RETURN outputs and
// in ordinals inscription envelopes carried by input witness stacks.
type BRC20Detector struct {
	pattern *regexp.Regexp
}

// NewBRC20Detector constructs the detector.
func NewBRC20Detector() *BRC20Detector {
	return &BRC20Detector{pattern: envelopePattern("brc-20")}
}

// Protocol returns the protocol name reported on activities.
func (d *BRC20Detector) Protocol() string { return "brc20" }

// Detect scans all outputs, then all witness-bearing inputs.
func (d *BRC20Detector) Detect(tx model.Transaction) []model.Activity {
	var activities []model.Activity
	for idx, out := range tx.Vout {
		if a, ok := d.fromOutput(out, idx); ok {
			activities = append(activities, a)
		}
	}
	for idx, in := range tx.Vin {
		if len(in.Witness) == 0 {
			continue
		}
		if a, ok := d.fromWitness(in.Witness, idx); ok {
			activities = append(activities, a)
		}
	}
	return activities
}

func (d *BRC20Detector) fromOutput(out model.Output, idx int) (model.Activity, bool) {
	script := strings.ToLower(out.ScriptPubKey)
	if !strings.HasPrefix(script, opReturnPrefix) {
		return model.Activity{}, false
	}
	// Skip opcode plus length byte.
	if len(script) <= 4 {
		return model.Activity{}, false
	}
	text, ok := decodeHexText(script[4:])
	if !ok {
		return model.Activity{}, false
	}
	payload, ok := extractPayload(text, d.pattern)
	if !ok {
		return model.Activity{}, false
	}
	return d.activity(payload, idx, model.SourceOutput, script), true
}

// fromWitness scans the witness stack and uses the first element that
// yields a decodable envelope; later elements are not inspected.
func (d *BRC20Detector) fromWitness(witness []string, idx int) (model.Activity, bool) {
	for _, item := range witness {
		item = strings.ToLower(item)
		pos := strings.Index(item, ordMarkerHex)
		if pos < 0 {
			continue
		}
		start := pos + ordPayloadOffset
		if start >= len(item) {
			continue
		}
		text, ok := decodeHexText(item[start:])
		if !ok {
			continue
		}
		payload, ok := extractPayload(text, d.pattern)
		if !ok {
			continue
		}
		return d.activity(payload, idx, model.SourceInput, item), true
	}
	return model.Activity{}, false
}

func (d *BRC20Detector) activity(p tokenPayload, idx int, source model.ActivitySource, raw string) model.Activity {
	return model.Activity{
		Protocol:    d.Protocol(),
		Operation:   p.Op,
		Index:       idx,
		Source:      source,
		Data:        p.data(),
		Changes:     p.stateChanges(),
		Description: brc20Description(p),
		Importance:  brc20Importance(p.Op),
		RawScript:   raw,
	}
}

// brc20Importance is the fixed per-operation score table.
func brc20Importance(op string) uint8 {
	switch op {
	case "deploy":
		return 8
	case "mint":
		return 5
	case "transfer":
		return 3
	default:
		return 1
	}
}

func brc20Description(p tokenPayload) string {
	switch p.Op {
	case "deploy":
		return fmt.Sprintf("Deploy BRC-20 token '%s' with max supply %s", p.Tick, orNA(p.Max, p.HasMax))
	case "mint":
		return fmt.Sprintf("Mint %s %s tokens", orNA(p.Amt, p.HasAmt), p.Tick)
	case "transfer":
		return fmt.Sprintf("Transfer %s %s tokens", orNA(p.Amt, p.HasAmt), p.Tick)
	default:
		return fmt.Sprintf("Unknown %s operation", p.Op)
	}
}
