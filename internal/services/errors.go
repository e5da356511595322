// Package services defines the business logic for document extraction,
// job posting parsing, artifact generation, and usage accounting. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrEmptyFile is returned when an upload contains no bytes.
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrNotPDF is returned when an upload is not a parseable PDF.
	ErrNotPDF = errors.New("uploaded file is not a valid PDF")

	// ErrEmptyJobText is returned when a job posting request contains no
	// text after sanitization.
	ErrEmptyJobText = errors.New("job description text is empty")

	// ErrDocumentNotFound indicates the requested extracted document does
	// not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrJobPostingNotFound indicates the requested job posting does not
	// exist.
	ErrJobPostingNotFound = errors.New("job posting not found")

	// ErrAuthRequired is returned when an anonymous caller requests an
	// operation reserved for registered users.
	ErrAuthRequired = errors.New("authentication required")

	// ErrQuotaExceeded is returned when the ledger denies a chargeable
	// operation. Handlers surface it distinctly so clients can prompt for
	// an upgrade.
	ErrQuotaExceeded = errors.New("monthly quota exceeded")

	// ErrProviderFailed wraps an unrecoverable provider error.
	ErrProviderFailed = errors.New("ai provider call failed")

	// ErrUnknownKind is returned for an unrecognized artifact kind.
	ErrUnknownKind = errors.New("unknown artifact kind")
)
