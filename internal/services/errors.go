// Package services – sentinel errors
//
// Shared error values returned by the service layer. Handlers map these to
// HTTP status codes; callers inside the pipeline compare with errors.Is.

package services

import "errors"

var (
	// ErrEmptyQuery is returned when a question is blank after trigger removal.
	ErrEmptyQuery = errors.New("empty query")

	// ErrRetrieval is returned when the vector store search fails.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration is returned when the language model call fails.
	ErrGeneration = errors.New("generation failed")

	// ErrInvalidCredentials is returned on a failed admin login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidPhoneNumber is returned when a whitelist mutation receives a
	// blank phone number. Non-blank values are stored verbatim; authorization
	// is an exact match on the JID-derived sender id, which is not always a
	// plain phone number (group chats).
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
)
