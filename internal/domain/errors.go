/**
 * @description
 * Sentinel errors shared across the domain layer. Validation failures
 * wrap ErrInvalidInput so callers can map them to 400 responses.
 */
package domain

import "errors"

var (
	// ErrInvalidInput marks construction or mutation input that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownBillingCycle is returned for billing cycle labels that cannot be parsed.
	ErrUnknownBillingCycle = errors.New("unknown billing cycle")

	// ErrUnknownAlertType is returned when an alert is built with a type outside the fixed set.
	ErrUnknownAlertType = errors.New("unknown alert type")
)
