package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatoshisToBTC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sats uint64
		want float64
	}{
		{name: "zero", sats: 0, want: 0},
		{name: "one satoshi", sats: 1, want: 0.00000001},
		{name: "dust limit", sats: 546, want: 0.00000546},
		{name: "one coin", sats: 100_000_000, want: 1},
		{name: "fractional", sats: 123_456_789, want: 1.23456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, SatoshisToBTC(tt.sats), 1e-9)
		})
	}
}
