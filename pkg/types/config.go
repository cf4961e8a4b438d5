package types

import "time"

// ConvertConfig holds settings for the conversion chain.
type ConvertConfig struct {
	// Engines lists converter engines in priority order
	// (default: unoconv, docx2pdf, pandoc, libreoffice).
	Engines []string `json:"engines" yaml:"engines"`

	// EngineTimeout is the base time budget for one engine invocation
	// (default 3m). The underlying process is killed when it is exceeded.
	EngineTimeout time.Duration `json:"timeout" yaml:"timeout"`

	// TimeoutPerMB extends the budget by this much per megabyte of source
	// document, so large documents get proportionally more time. Zero
	// disables size scaling.
	TimeoutPerMB time.Duration `json:"timeout_per_mb" yaml:"timeout_per_mb"`

	// MinOutputBytes is the minimum size for a produced PDF to count as
	// valid (default 100). Smaller files are treated as failed attempts.
	MinOutputBytes int64 `json:"min_output_bytes" yaml:"min_output_bytes"`

	// SkipVerify disables the check that produced files start with the
	// %PDF- magic bytes.
	SkipVerify bool `json:"skip_verify" yaml:"skip_verify"`
}

// CompressionConfig holds settings for the optional PDF compression step.
type CompressionConfig struct {
	// Enabled controls whether compression runs after a successful
	// conversion.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Quality selects the ghostscript preset: screen, ebook, printer, or
	// prepress (default ebook).
	Quality string `json:"quality" yaml:"quality"`

	// Timeout bounds one compression run (default 1m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// HistoryConfig holds settings for the conversion history journal.
type HistoryConfig struct {
	// Path is the SQLite database file; empty disables the journal.
	Path string `json:"path" yaml:"path"`

	// Limit is the default number of rows shown by the history command
	// (default 20).
	Limit int `json:"limit" yaml:"limit"`
}

// Config groups all docpress settings.
type Config struct {
	Convert     ConvertConfig     `json:"convert" yaml:"convert"`
	Compression CompressionConfig `json:"compression" yaml:"compression"`
	History     HistoryConfig     `json:"history" yaml:"history"`
}
