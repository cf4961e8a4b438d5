// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compress shrinks PDFs by rewriting them through ghostscript's
// pdfwrite device.
package compress

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/docpress/pkg/types"
)

const binGhostscript = "gs"

// defaultQuality balances file size against text legibility.
const defaultQuality = "ebook"

const defaultTimeout = time.Minute

// qualities lists the pdfwrite presets ghostscript accepts.
var qualities = map[string]bool{
	"screen":   true,
	"ebook":    true,
	"printer":  true,
	"prepress": true,
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if msg := lastLine(out); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// lastLine returns the final non-empty line of command output.
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var defaultExec executor = osExecutor{}

// Ghostscript compresses PDFs in place through the pdfwrite device.
type Ghostscript struct {
	quality string
	timeout time.Duration
	exec    executor
}

// NewGhostscript returns a compressor backed by the gs binary. It verifies
// the binary is on PATH and the quality preset is valid before returning.
func NewGhostscript(cfg types.CompressionConfig) (*Ghostscript, error) {
	return newGhostscript(cfg, defaultExec)
}

func newGhostscript(cfg types.CompressionConfig, ex executor) (*Ghostscript, error) {
	if _, err := ex.LookPath(binGhostscript); err != nil {
		return nil, fmt.Errorf("ghostscript not found on PATH: %w", err)
	}

	quality := cfg.Quality
	if quality == "" {
		quality = defaultQuality
	}
	if !qualities[quality] {
		return nil, fmt.Errorf("unsupported quality %q: use screen, ebook, printer, or prepress", quality)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Ghostscript{quality: quality, timeout: timeout, exec: ex}, nil
}

// Name returns the collaborator name used in status lines.
func (g *Ghostscript) Name() string { return "ghostscript" }

// Compress rewrites the PDF at path in place. The original file is only
// replaced after ghostscript succeeds and the rewrite is non-empty, so a
// failed compression never costs the converted document.
func (g *Ghostscript) Compress(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".compress-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=/" + g.quality,
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		"-sOutputFile=" + tmpPath,
		path,
	}
	if err := g.exec.Run(ctx, binGhostscript, args...); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("compressing %s: %w", filepath.Base(path), err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil || info.Size() == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("ghostscript produced no output for %s", filepath.Base(path))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
