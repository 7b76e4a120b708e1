// Package handlers – HTTP error codes
//
// Stable, machine-readable codes carried in every ErrorResponse. Generic
// codes mirror HTTP status semantics; domain codes cover pipeline failures
// that a status alone cannot convey.

package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeAnswerFailed    = "answer_failed"
	ErrCodeDeliveryFailed  = "delivery_failed"
	ErrCodeIngestionFailed = "ingestion_failed"
)
