package detect

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// tokenOps is the whitelist of operations accepted by protocol-tag
// detectors. Anything else is rejected, not forwarded.
var tokenOps = map[string]struct{}{
	"deploy":   {},
	"mint":     {},
	"transfer": {},
}

// tokenPayload is the decoded embedded object of a protocol-tag
// detector. Op and Tick are required; the rest is copied through
// verbatim when present.
type tokenPayload struct {
	Op   string
	Tick string
	Amt  string
	Max  string
	Lim  string

	HasAmt bool
	HasMax bool
	HasLim bool
}

// envelopePattern compiles the bounded non-greedy brace scan for an
// embedded object carrying the given protocol tag.
func envelopePattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`\{[^{}]*?"p"\s*:\s*"` + regexp.QuoteMeta(tag) + `"[^{}]*?\}`)
}

// decodeHexText decodes a hex payload into text with NUL bytes
// stripped. Any decode failure means "not this protocol".
func decodeHexText(payload string) (string, bool) {
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return "", false
	}
	return strings.ReplaceAll(string(raw), "\x00", ""), true
}

// extractPayload runs the shared fallible pipeline over decoded text:
// pattern match, object decode, required-field validation, operation
// whitelist. Failure at any stage rejects the candidate.
func extractPayload(text string, pattern *regexp.Regexp) (tokenPayload, bool) {
	object := pattern.FindString(text)
	if object == "" {
		return tokenPayload{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return tokenPayload{}, false
	}

	op, ok := stringField(fields, "op")
	if !ok {
		return tokenPayload{}, false
	}
	op = strings.ToLower(op)
	if _, ok := tokenOps[op]; !ok {
		return tokenPayload{}, false
	}
	tick, ok := stringField(fields, "tick")
	if !ok {
		return tokenPayload{}, false
	}

	p := tokenPayload{Op: op, Tick: strings.ToUpper(tick)}
	p.Amt, p.HasAmt = stringField(fields, "amt")
	p.Max, p.HasMax = stringField(fields, "max")
	p.Lim, p.HasLim = stringField(fields, "lim")
	return p, true
}

func stringField(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// data builds the activity data map shared by protocol-tag detectors.
func (p tokenPayload) data() map[string]string {
	d := map[string]string{
		"tick":      p.Tick,
		"operation": p.Op,
	}
	if p.HasAmt {
		d["amount"] = p.Amt
	}
	if p.HasMax {
		d["max_supply"] = p.Max
	}
	if p.HasLim {
		d["limit"] = p.Lim
	}
	return d
}

// stateChanges derives the symbolic state effects of the payload. The
// detectors carry no ledger state, so prior balances and supplies are
// placeholders describing the shape of the change only. A mint or
// transfer without an amount yields no changes at all.
func (p tokenPayload) stateChanges() []model.StateChange {
	switch p.Op {
	case "deploy":
		changes := []model.StateChange{{
			Field: fmt.Sprintf("token.%s.exists", p.Tick),
			After: "true",
			Kind:  model.ChangeCreated,
		}}
		if p.HasMax {
			changes = append(changes, model.StateChange{
				Field: fmt.Sprintf("token.%s.max_supply", p.Tick),
				After: p.Max,
				Kind:  model.ChangeCreated,
			})
		}
		return changes
	case "mint":
		if !p.HasAmt {
			return nil
		}
		return []model.StateChange{
			{
				Field:  fmt.Sprintf("token.%s.total_supply", p.Tick),
				Before: "prev_supply",
				After:  "prev_supply + " + p.Amt,
				Kind:   model.ChangeUpdated,
			},
			{
				Field:  fmt.Sprintf("balance.%s.minter", p.Tick),
				Before: "prev_balance",
				After:  "prev_balance + " + p.Amt,
				Kind:   model.ChangeUpdated,
			},
		}
	case "transfer":
		if !p.HasAmt {
			return nil
		}
		return []model.StateChange{
			{
				Field:  fmt.Sprintf("balance.%s.sender", p.Tick),
				Before: "sender_balance",
				After:  "sender_balance - " + p.Amt,
				Kind:   model.ChangeUpdated,
			},
			{
				Field:  fmt.Sprintf("balance.%s.receiver", p.Tick),
				Before: "receiver_balance",
				After:  "receiver_balance + " + p.Amt,
				Kind:   model.ChangeUpdated,
			},
		}
	}
	return nil
}

func orNA(s string, present bool) string {
	if !present {
		return "N/A"
	}
	return s
}
