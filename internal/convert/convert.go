// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements DOCX to PDF conversion with engine fallback.
// Engines are tried strictly in priority order until one produces a valid
// PDF, and every engine tried is recorded in the request's attempt log.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/docpress/internal/engine"
	"github.com/pdiddy/docpress/pkg/types"
)

// defaultMinOutputBytes rejects obviously truncated output when the
// configuration does not set a threshold.
const defaultMinOutputBytes = 100

// pdfMagic is the header every well-formed PDF starts with.
const pdfMagic = "%PDF-"

// Compressor shrinks a PDF in place after a successful conversion.
type Compressor interface {
	Name() string
	Compress(ctx context.Context, pdfPath string) error
}

// Orchestrator tries each engine in its chain until one produces a valid
// PDF. It holds no per-request state; one Orchestrator serves any number
// of sequential requests.
type Orchestrator struct {
	engines    []engine.Engine
	compressor Compressor
	cfg        types.ConvertConfig
}

// New creates an Orchestrator over the given engine chain. compressor may
// be nil; requests that ask for compression then get a warning and keep
// the uncompressed PDF.
func New(engines []engine.Engine, compressor Compressor, cfg types.ConvertConfig) *Orchestrator {
	if cfg.MinOutputBytes <= 0 {
		cfg.MinOutputBytes = defaultMinOutputBytes
	}
	return &Orchestrator{engines: engines, compressor: compressor, cfg: cfg}
}

// Convert runs one request through the engine chain, writing per-engine
// status lines to w. The outcome is returned in every case; the error is
// nil on success, a *PreconditionError when the request was rejected up
// front, a *NoEngineError when nothing could be tried, a
// *TotalFailureError when every engine failed, or the context's error when
// the caller canceled mid-chain.
func (o *Orchestrator) Convert(ctx context.Context, req types.ConversionRequest, w io.Writer) (*types.ConversionOutcome, error) {
	outcome := &types.ConversionOutcome{
		ID:        uuid.NewString(),
		Source:    req.Source,
		StartedAt: time.Now().UTC(),
	}
	defer func() { outcome.Duration = time.Since(outcome.StartedAt) }()

	srcInfo, err := checkPreconditions(req)
	if err != nil {
		return outcome, err
	}

	if len(o.engines) == 0 {
		return outcome, &NoEngineError{}
	}

	anyAvailable := false
	for _, eng := range o.engines {
		if eng.Available() {
			anyAvailable = true
			break
		}
	}
	if !anyAvailable {
		for _, eng := range o.engines {
			outcome.Attempts = append(outcome.Attempts, types.Attempt{
				Engine: eng.Name(),
				Status: types.AttemptFailed,
				Class:  types.FailureUnavailable,
				Detail: "not installed",
			})
		}
		return outcome, &NoEngineError{Attempts: outcome.Attempts}
	}

	// The scratch dir lives next to the destination so the final rename
	// stays on one filesystem. Creating it doubles as the writability check.
	scratch, err := os.MkdirTemp(filepath.Dir(req.Dest), ".docpress-*")
	if err != nil {
		return outcome, &PreconditionError{
			Path:   filepath.Dir(req.Dest),
			Reason: "destination directory not writable",
			Err:    err,
		}
	}
	defer os.RemoveAll(scratch)

	for i, eng := range o.engines {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}

		scratchFile := filepath.Join(scratch, fmt.Sprintf("%02d-%s.pdf", i, eng.Name()))
		attempt := o.tryEngine(ctx, eng, req, srcInfo.Size(), scratchFile)
		outcome.Attempts = append(outcome.Attempts, attempt)

		if attempt.Status == types.AttemptFailed {
			fmt.Fprintf(w, "failed:  %s (%s)\n", eng.Name(), attempt.Detail)
			continue
		}

		outcome.Succeeded = true
		outcome.Engine = eng.Name()
		outcome.Output = req.Dest
		fmt.Fprintf(w, "converted: %s (%s)\n", req.Dest, eng.Name())

		if req.Compress {
			o.compress(ctx, req.Dest, outcome, w)
		}
		return outcome, nil
	}

	return outcome, &TotalFailureError{Source: req.Source, Attempts: outcome.Attempts}
}

// tryEngine runs one engine against its scratch file and classifies the
// result. On success the scratch file has been validated and renamed onto
// the request's destination; on failure nothing is left behind for the
// next engine to trip over.
func (o *Orchestrator) tryEngine(ctx context.Context, eng engine.Engine, req types.ConversionRequest, srcSize int64, scratchFile string) types.Attempt {
	start := time.Now()
	attempt := types.Attempt{Engine: eng.Name()}

	if !eng.Available() {
		attempt.Status = types.AttemptFailed
		attempt.Class = types.FailureUnavailable
		attempt.Detail = "not installed"
		attempt.Duration = time.Since(start)
		return attempt
	}

	timeout := attemptTimeout(eng.Timeout(), o.cfg.TimeoutPerMB, srcSize)
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := eng.Convert(attemptCtx, req.Source, scratchFile)
	if err == nil {
		err = o.validateOutput(scratchFile)
	}
	if err == nil {
		if renameErr := os.Rename(scratchFile, req.Dest); renameErr != nil {
			err = fmt.Errorf("placing output: %w", renameErr)
		}
	}

	attempt.Duration = time.Since(start)
	if err != nil {
		os.Remove(scratchFile)
		attempt.Status = types.AttemptFailed
		if errors.Is(err, context.DeadlineExceeded) {
			attempt.Class = types.FailureTimeout
			attempt.Detail = fmt.Sprintf("killed after %s", timeout)
		} else {
			attempt.Class = types.FailureInvocation
			attempt.Detail = err.Error()
		}
		return attempt
	}

	attempt.Status = types.AttemptSucceeded
	return attempt
}

// compress runs the optional post-step. Failure leaves the uncompressed
// PDF in place and the outcome successful; compression is a collaborator,
// not part of the conversion contract.
func (o *Orchestrator) compress(ctx context.Context, path string, outcome *types.ConversionOutcome, w io.Writer) {
	if o.compressor == nil {
		fmt.Fprintf(w, "warning: compression requested but no compressor configured\n")
		return
	}
	if err := o.compressor.Compress(ctx, path); err != nil {
		fmt.Fprintf(w, "warning: compression failed: %v\n", err)
		return
	}
	outcome.Compressed = true
	fmt.Fprintf(w, "compressed: %s (%s)\n", path, o.compressor.Name())
}

// checkPreconditions rejects unusable requests before any engine runs.
func checkPreconditions(req types.ConversionRequest) (os.FileInfo, error) {
	if req.Source == "" {
		return nil, &PreconditionError{Reason: "source path is empty"}
	}
	if req.Dest == "" {
		return nil, &PreconditionError{Reason: "destination path is empty"}
	}

	info, err := os.Stat(req.Source)
	if err != nil {
		return nil, &PreconditionError{Path: req.Source, Reason: "source not found", Err: err}
	}
	if info.IsDir() {
		return nil, &PreconditionError{Path: req.Source, Reason: "source is a directory"}
	}
	f, err := os.Open(req.Source)
	if err != nil {
		return nil, &PreconditionError{Path: req.Source, Reason: "source not readable", Err: err}
	}
	f.Close()

	if err := os.MkdirAll(filepath.Dir(req.Dest), 0o755); err != nil {
		return nil, &PreconditionError{
			Path:   filepath.Dir(req.Dest),
			Reason: "cannot create destination directory",
			Err:    err,
		}
	}
	return info, nil
}

// attemptTimeout scales the engine's base budget by source size so large
// documents are not killed mid-render.
func attemptTimeout(base, perMB time.Duration, srcSize int64) time.Duration {
	if base <= 0 {
		base = engine.DefaultTimeout
	}
	if perMB <= 0 {
		return base
	}
	mb := srcSize / (1 << 20)
	return base + time.Duration(mb)*perMB
}

// validateOutput decides whether an engine actually produced a usable PDF.
// Engines exit zero and leave garbage behind often enough that exit codes
// alone cannot be trusted.
func (o *Orchestrator) validateOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("no output produced")
	}
	if info.Size() < o.cfg.MinOutputBytes {
		return fmt.Errorf("output too small: %d bytes (minimum %d)", info.Size(), o.cfg.MinOutputBytes)
	}
	if o.cfg.SkipVerify {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("reading output header: %w", err)
	}
	if string(header) != pdfMagic {
		return fmt.Errorf("output is not a PDF (bad header)")
	}
	return nil
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch runs each request through the chain in order, printing
// per-document status to w and returning a summary. each, when non-nil,
// receives every outcome as it completes, successful or not. A canceled
// context stops the batch after the current document.
func (o *Orchestrator) ConvertBatch(ctx context.Context, reqs []types.ConversionRequest, w io.Writer, each func(*types.ConversionOutcome)) BatchResult {
	var result BatchResult
	for _, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		outcome, err := o.Convert(ctx, req, w)
		if each != nil {
			each(outcome)
		}
		if err != nil {
			result.Failed++
			fmt.Fprintf(w, "failed:  %v\n", err)
			continue
		}
		result.Converted++
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result
}

// RequestsForPaths builds one request per document path. Destinations are
// named after the source with a .pdf extension, placed in outDir when set
// or alongside the source otherwise.
func RequestsForPaths(paths []string, outDir string, compress bool) []types.ConversionRequest {
	reqs := make([]types.ConversionRequest, len(paths))
	for i, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)) + ".pdf"
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(p)
		}
		reqs[i] = types.ConversionRequest{
			Source:   p,
			Dest:     filepath.Join(dir, base),
			Compress: compress,
		}
	}
	return reqs
}
