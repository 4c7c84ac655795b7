// Package detect implements metaprotocol pattern detectors and their
// classifier. Detectors are stateless; malformed candidates are skipped
// silently since arbitrary non-protocol transactions are expected input.
package detect

import (
	"github.com/goodnatureofminers/metawatch7000-backend/internal/model"
)

// Detector extracts activities for one protocol from a transaction.
// Implementations never mutate the transaction and never fail; no match
// yields an empty slice.
type Detector interface {
	Protocol() string
	Detect(tx model.Transaction) []model.Activity
}

// Result is the outcome of classifying one transaction.
type Result struct {
	Activities []model.Activity
	Protocols  []string
}

// Classifier runs a fixed, ordered detector registry over transactions.
// Adding a protocol means registering another Detector.
type Classifier struct {
	detectors []Detector
}

// NewClassifier builds a classifier over the given detectors, run in
// the given order.
func NewClassifier(detectors ...Detector) *Classifier {
	return &Classifier{detectors: detectors}
}

// DefaultDetectors returns the standard detector registry.
func DefaultDetectors() []Detector {
	return []Detector{
		NewBRC20Detector(),
		NewRunesDetector(),
		NewStampsDetector(),
	}
}

// Classify runs every detector against the transaction, concatenating
// their activities in registry order. A protocol is reported iff at
// least one of its activities was produced.
func (c *Classifier) Classify(tx model.Transaction) Result {
	var res Result
	seen := make(map[string]struct{})
	for _, d := range c.detectors {
		activities := d.Detect(tx)
		res.Activities = append(res.Activities, activities...)
		for _, a := range activities {
			if _, ok := seen[a.Protocol]; ok {
				continue
			}
			seen[a.Protocol] = struct{}{}
			res.Protocols = append(res.Protocols, a.Protocol)
		}
	}
	return res
}
