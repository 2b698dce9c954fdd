// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"math"
	"time"
)

// DecayFunc returns the weight multiplier of an event at ts relative to the
// reference time ref.
type DecayFunc func(ts, ref time.Time, halfLife time.Duration) float64

// ExponentialDecay halves the weight every halfLife: 0.5^((ref−ts)/halfLife).
// Events after ref are weighted above 1.
func ExponentialDecay(ts, ref time.Time, halfLife time.Duration) float64 {
	return math.Pow(0.5, float64(ref.Sub(ts))/float64(halfLife))
}
