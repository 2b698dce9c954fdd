// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import "errors"

// Sentinel errors returned by the model. Callers test with errors.Is; the
// returned errors wrap these with call-specific detail.
var (
	// ErrInvalidConfiguration is returned for an unknown similarity type,
	// a threshold below 1, or an otherwise unusable configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput is returned for malformed training or request data,
	// such as a non-numeric rating column.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEntity is returned when a user (or seed item) is absent
	// from the identity index.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrNormalizationUnavailable is returned when normalized scores are
	// requested from a model fitted without normalization.
	ErrNormalizationUnavailable = errors.New("normalization unavailable: model was fitted without normalize")

	// ErrNotFitted is returned when scoring a model before Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrAlreadyFitted is returned when Fit is called twice on one model.
	ErrAlreadyFitted = errors.New("model is already fitted")
)
