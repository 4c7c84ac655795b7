package detect

import (
	"strings"

	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// stampMarkerHex is "stamp:" in script hex.
const stampMarkerHex = "7374616d703a"

// stampsImportance is the fixed per-protocol score for stamps activity.
const stampsImportance = 6

// StampsDetector reports a coarse presence signal for Bitcoin Stamps
// data. It matches a marker substring only; no payload is decoded.
type StampsDetector struct{}

// NewStampsDetector constructs the detector.
func NewStampsDetector() *StampsDetector {
	return &StampsDetector{}
}

// Protocol returns the protocol name reported on activities.
func (d *StampsDetector) Protocol() string { return "stamps" }

// Detect emits one fixed-shape activity per marker-bearing output.
func (d *StampsDetector) Detect(tx model.Transaction) []model.Activity {
	var activities []model.Activity
	for idx, out := range tx.Vout {
		script := strings.ToLower(out.ScriptPubKey)
		if !strings.Contains(script, stampMarkerHex) {
			continue
		}
		activities = append(activities, model.Activity{
			Protocol:    d.Protocol(),
			Operation:   "stamp",
			Index:       idx,
			Source:      model.SourceOutput,
			Description: "Bitcoin Stamp data embedded in output script",
			Importance:  stampsImportance,
			RawScript:   script,
		})
	}
	return activities
}
