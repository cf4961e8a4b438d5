// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine wraps external DOCX to PDF converters behind a uniform
// invoke-with-timeout contract. Each engine is an opaque black box: given a
// source and destination path it either produces a PDF or fails.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/pdiddy/docpress/pkg/types"
)

// Engine names accepted in the configured priority order.
const (
	NameUnoconv     = "unoconv"
	NameDocx2PDF    = "docx2pdf"
	NamePandoc      = "pandoc"
	NameLibreOffice = "libreoffice"
)

// DefaultOrder lists the engines tried when no explicit order is configured.
var DefaultOrder = []string{NameUnoconv, NameDocx2PDF, NamePandoc, NameLibreOffice}

// DefaultTimeout is the base time budget for one engine invocation when the
// configuration does not set one.
const DefaultTimeout = 3 * time.Minute

// hostOS is the operating system engines are gated on; tests substitute it.
var hostOS = runtime.GOOS

// Engine is one external DOCX to PDF converter.
type Engine interface {
	// Name returns the engine name ("unoconv", "docx2pdf", "pandoc",
	// "libreoffice").
	Name() string

	// Available reports whether the engine can run on this host.
	Available() bool

	// Timeout returns the base time budget declared for one invocation.
	Timeout() time.Duration

	// Convert renders the DOCX at src to a PDF at dest. The context bounds
	// the invocation; on expiry the underlying process is killed.
	Convert(ctx context.Context, src, dest string) error
}

// Chain builds the ordered engine list from cfg. An unknown engine name is
// a configuration error; availability is not checked here, so the chain
// preserves the configured order for attempt logging.
func Chain(cfg types.ConvertConfig) ([]Engine, error) {
	return newChain(cfg, defaultRunner)
}

func newChain(cfg types.ConvertConfig, r runner) ([]Engine, error) {
	names := cfg.Engines
	if len(names) == 0 {
		names = DefaultOrder
	}
	timeout := cfg.EngineTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	engines := make([]Engine, 0, len(names))
	for _, name := range names {
		switch name {
		case NameUnoconv:
			engines = append(engines, newUnoconv(timeout, r))
		case NameDocx2PDF:
			engines = append(engines, newDocx2PDF(timeout, r))
		case NamePandoc:
			engines = append(engines, newPandoc(timeout, r))
		case NameLibreOffice:
			engines = append(engines, newLibreOffice(timeout, r))
		default:
			return nil, fmt.Errorf(
				"unknown engine %q: use %s, %s, %s, or %s",
				name, NameUnoconv, NameDocx2PDF, NamePandoc, NameLibreOffice,
			)
		}
	}
	return engines, nil
}

// Info describes one engine's state on this host, for diagnostics.
type Info struct {
	Name      string        `json:"name" yaml:"name"`
	Available bool          `json:"available" yaml:"available"`
	Path      string        `json:"path,omitempty" yaml:"path,omitempty"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// Inspect probes every engine in cfg's priority order and reports its
// availability and resolved binary path.
func Inspect(cfg types.ConvertConfig) ([]Info, error) {
	return inspect(cfg, defaultRunner)
}

func inspect(cfg types.ConvertConfig, r runner) ([]Info, error) {
	chain, err := newChain(cfg, r)
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(chain))
	for _, eng := range chain {
		info := Info{
			Name:      eng.Name(),
			Available: eng.Available(),
			Timeout:   eng.Timeout(),
		}
		if p, ok := eng.(interface{ path() string }); ok {
			info.Path = p.path()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// cliEngine implements Engine for converters that take the source and
// destination paths directly on the command line. The simple engines share
// this logic; they differ only in binary name, argument layout, and the
// platforms they support.
type cliEngine struct {
	name    string
	bin     string
	timeout time.Duration
	goos    []string // empty means any platform
	args    func(src, dest string) []string
	run     runner
}

func (e *cliEngine) Name() string { return e.name }

func (e *cliEngine) Timeout() time.Duration { return e.timeout }

func (e *cliEngine) Available() bool {
	if !platformSupported(e.goos) {
		return false
	}
	_, err := e.run.LookPath(e.bin)
	return err == nil
}

func (e *cliEngine) Convert(ctx context.Context, src, dest string) error {
	res, err := e.run.Run(ctx, nil, e.bin, e.args(src, dest)...)
	if err != nil {
		return commandError(res, err)
	}
	return nil
}

func (e *cliEngine) path() string {
	p, err := e.run.LookPath(e.bin)
	if err != nil {
		return ""
	}
	return p
}

// platformSupported reports whether the host OS is in the allowed list.
// An empty list allows any platform.
func platformSupported(goos []string) bool {
	if len(goos) == 0 {
		return true
	}
	for _, g := range goos {
		if g == hostOS {
			return true
		}
	}
	return false
}

// commandError folds an output excerpt into the command error so attempt
// logs carry the engine's own words.
func commandError(res runResult, err error) error {
	msg := strings.TrimSpace(res.stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.stdout)
	}
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, excerpt(msg))
}

// excerpt returns the last non-empty line of engine output, capped so it
// fits on a status line.
func excerpt(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if len(last) > 200 {
		last = last[:197] + "..."
	}
	return last
}
