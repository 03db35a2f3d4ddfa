package pipeline

import "errors"

var (
	// ErrUnknownBackend is returned for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrBatchHalted is returned when a batch stops after repeated
	// rate limit exhaustion
	ErrBatchHalted = errors.New("batch halted")
)

// ErrNoCompany is returned for a posting without a company name
var ErrNoCompany = errors.New("posting has no company name")
