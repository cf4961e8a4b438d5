// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FailureClass classifies why a single engine attempt failed.
type FailureClass string

const (
	// FailureUnavailable means the engine is not installed on this host.
	FailureUnavailable FailureClass = "unavailable"
	// FailureTimeout means the engine exceeded its time budget and was killed.
	FailureTimeout FailureClass = "timeout"
	// FailureInvocation means the engine ran but errored or produced an
	// invalid output file.
	FailureInvocation FailureClass = "invocation"
)

// AttemptStatus indicates how a single engine attempt ended.
type AttemptStatus string

const (
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// ConversionRequest describes one DOCX to PDF conversion. It is immutable
// for the duration of the request; compression is an explicit per-request
// field, never ambient process state.
type ConversionRequest struct {
	// Source is the path of the DOCX document to convert.
	Source string `json:"source" yaml:"source"`

	// Dest is the path the PDF is written to on success.
	Dest string `json:"dest" yaml:"dest"`

	// Compress applies the compression step to the PDF after a successful
	// conversion.
	Compress bool `json:"compress" yaml:"compress"`
}

// Attempt records the outcome of one engine in the fallback chain.
type Attempt struct {
	// Engine is the engine name ("unoconv", "docx2pdf", "pandoc", "libreoffice").
	Engine string `json:"engine" yaml:"engine"`

	// Status is succeeded or failed.
	Status AttemptStatus `json:"status" yaml:"status"`

	// Class classifies the failure; empty on success.
	Class FailureClass `json:"class,omitempty" yaml:"class,omitempty"`

	// Detail is a human-readable description of the failure, usually
	// including an excerpt of the engine's stderr.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Duration is the wall time the attempt took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// ConversionOutcome is the result of one ConversionRequest: either a success
// naming the winning engine and output path, or a failure carrying the
// ordered attempt log for diagnosis.
type ConversionOutcome struct {
	// ID uniquely identifies the request (UUID).
	ID string `json:"id" yaml:"id"`

	// Source is the DOCX document that was converted.
	Source string `json:"source" yaml:"source"`

	// Output is the path of the produced PDF; empty on failure.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Engine names the engine that produced the PDF; empty on failure.
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Succeeded reports whether any engine produced a valid PDF.
	Succeeded bool `json:"succeeded" yaml:"succeeded"`

	// Compressed reports whether the compression step ran on the output.
	Compressed bool `json:"compressed" yaml:"compressed"`

	// StartedAt is when the orchestrator began processing the request.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is the total wall time for the request across all attempts.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Attempts lists every engine tried, in priority order.
	Attempts []Attempt `json:"attempts" yaml:"attempts"`
}
