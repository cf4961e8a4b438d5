// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/docpress/pkg/types"
)

// runnerCall records one Run invocation.
type runnerCall struct {
	name string
	args []string
	env  []string
}

// mockRunner records calls and returns configured responses.
type mockRunner struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runFunc       func(ctx context.Context, env []string, name string, args []string) (runResult, error)
	calls         []runnerCall
}

func (m *mockRunner) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockRunner) Run(ctx context.Context, env []string, name string, args ...string) (runResult, error) {
	m.calls = append(m.calls, runnerCall{name: name, args: args, env: env})
	if m.runFunc != nil {
		return m.runFunc(ctx, env, name, args)
	}
	return runResult{}, nil
}

func TestChainOrder(t *testing.T) {
	tests := []struct {
		name      string
		engines   []string
		wantNames []string
		wantErr   string
	}{
		{
			name:      "default order when unconfigured",
			engines:   nil,
			wantNames: []string{"unoconv", "docx2pdf", "pandoc", "libreoffice"},
		},
		{
			name:      "explicit subset preserves its order",
			engines:   []string{"pandoc", "unoconv"},
			wantNames: []string{"pandoc", "unoconv"},
		},
		{
			name:      "single engine",
			engines:   []string{"libreoffice"},
			wantNames: []string{"libreoffice"},
		},
		{
			name:    "unknown engine rejected",
			engines: []string{"unoconv", "wordperfect"},
			wantErr: `unknown engine "wordperfect"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := newChain(types.ConvertConfig{Engines: tt.engines}, &mockRunner{})
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chain) != len(tt.wantNames) {
				t.Fatalf("got %d engines, want %d", len(chain), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if got := chain[i].Name(); got != want {
					t.Errorf("engine %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestChainTimeout(t *testing.T) {
	chain, err := newChain(types.ConvertConfig{}, &mockRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, eng := range chain {
		if eng.Timeout() != DefaultTimeout {
			t.Errorf("%s timeout = %v, want default %v", eng.Name(), eng.Timeout(), DefaultTimeout)
		}
	}

	chain, err = newChain(types.ConvertConfig{EngineTimeout: 30 * time.Second}, &mockRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, eng := range chain {
		if eng.Timeout() != 30*time.Second {
			t.Errorf("%s timeout = %v, want 30s", eng.Name(), eng.Timeout())
		}
	}
}

func TestAvailability(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		goos   string
		bins   map[string]bool
		want   bool
	}{
		{
			name:   "unoconv on PATH",
			engine: "unoconv",
			goos:   "linux",
			bins:   map[string]bool{"unoconv": true},
			want:   true,
		},
		{
			name:   "unoconv missing",
			engine: "unoconv",
			goos:   "linux",
			bins:   map[string]bool{},
			want:   false,
		},
		{
			name:   "docx2pdf needs Word, unavailable on linux even when installed",
			engine: "docx2pdf",
			goos:   "linux",
			bins:   map[string]bool{"docx2pdf": true},
			want:   false,
		},
		{
			name:   "docx2pdf available on darwin",
			engine: "docx2pdf",
			goos:   "darwin",
			bins:   map[string]bool{"docx2pdf": true},
			want:   true,
		},
		{
			name:   "docx2pdf available on windows",
			engine: "docx2pdf",
			goos:   "windows",
			bins:   map[string]bool{"docx2pdf": true},
			want:   true,
		},
		{
			name:   "pandoc on PATH",
			engine: "pandoc",
			goos:   "linux",
			bins:   map[string]bool{"pandoc": true},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldOS := hostOS
			hostOS = tt.goos
			defer func() { hostOS = oldOS }()

			chain, err := newChain(types.ConvertConfig{Engines: []string{tt.engine}}, &mockRunner{availableBins: tt.bins})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := chain[0].Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineArgs(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		wantBin  string
		wantArgs []string
	}{
		{
			name:     "unoconv",
			engine:   "unoconv",
			wantBin:  "unoconv",
			wantArgs: []string{"-f", "pdf", "-o", "/out/doc.pdf", "/in/doc.docx"},
		},
		{
			name:     "docx2pdf",
			engine:   "docx2pdf",
			wantBin:  "docx2pdf",
			wantArgs: []string{"/in/doc.docx", "/out/doc.pdf"},
		},
		{
			name:     "pandoc",
			engine:   "pandoc",
			wantBin:  "pandoc",
			wantArgs: []string{"/in/doc.docx", "-o", "/out/doc.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &mockRunner{availableBins: map[string]bool{tt.engine: true}}
			chain, err := newChain(types.ConvertConfig{Engines: []string{tt.engine}}, run)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := chain[0].Convert(context.Background(), "/in/doc.docx", "/out/doc.pdf"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(run.calls) != 1 {
				t.Fatalf("got %d calls, want 1", len(run.calls))
			}
			call := run.calls[0]
			if call.name != tt.wantBin {
				t.Errorf("binary = %q, want %q", call.name, tt.wantBin)
			}
			if len(call.args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", call.args, tt.wantArgs)
			}
			for i, want := range tt.wantArgs {
				if call.args[i] != want {
					t.Errorf("arg %d = %q, want %q", i, call.args[i], want)
				}
			}
			if call.env != nil {
				t.Errorf("env should be inherited (nil), got %d entries", len(call.env))
			}
		})
	}
}

func TestConvertSurfacesDeadline(t *testing.T) {
	run := &mockRunner{
		availableBins: map[string]bool{"unoconv": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			return runResult{}, context.DeadlineExceeded
		},
	}
	chain, err := newChain(types.ConvertConfig{Engines: []string{"unoconv"}}, run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = chain[0].Convert(context.Background(), "/in/doc.docx", "/out/doc.pdf")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestCommandError(t *testing.T) {
	base := errors.New("exit status 1")
	tests := []struct {
		name string
		res  runResult
		want string
	}{
		{
			name: "stderr preferred",
			res:  runResult{stdout: "progress...", stderr: "Error: cannot load document"},
			want: "exit status 1: Error: cannot load document",
		},
		{
			name: "stdout when stderr empty",
			res:  runResult{stdout: "unoconv: Cannot find a running listener"},
			want: "exit status 1: unoconv: Cannot find a running listener",
		},
		{
			name: "bare error when both empty",
			res:  runResult{},
			want: "exit status 1",
		},
		{
			name: "last line of multi-line output",
			res:  runResult{stderr: "loading...\nstill loading...\nfatal: out of memory"},
			want: "exit status 1: fatal: out of memory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := commandError(tt.res, base)
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, base) {
				t.Error("wrapped error should unwrap to the original")
			}
		})
	}
}

func TestExcerptCapsLength(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := excerpt(long)
	if len(got) != 200 {
		t.Errorf("excerpt length = %d, want 200", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("excerpt should end with ellipsis, got %q", got[len(got)-10:])
	}
}

func TestInspect(t *testing.T) {
	oldOS := hostOS
	hostOS = "linux"
	defer func() { hostOS = oldOS }()

	run := &mockRunner{availableBins: map[string]bool{"pandoc": true, "soffice": true}}
	infos, err := inspect(types.ConvertConfig{}, run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(infos) != len(DefaultOrder) {
		t.Fatalf("got %d infos, want %d", len(infos), len(DefaultOrder))
	}

	byName := make(map[string]Info, len(infos))
	for i, info := range infos {
		if info.Name != DefaultOrder[i] {
			t.Errorf("info %d = %q, want %q", i, info.Name, DefaultOrder[i])
		}
		byName[info.Name] = info
	}

	if !byName["pandoc"].Available {
		t.Error("pandoc should be available")
	}
	if byName["pandoc"].Path != "/usr/bin/pandoc" {
		t.Errorf("pandoc path = %q, want /usr/bin/pandoc", byName["pandoc"].Path)
	}
	if !byName["libreoffice"].Available {
		t.Error("libreoffice should be available via soffice")
	}
	if byName["unoconv"].Available {
		t.Error("unoconv should be unavailable")
	}
	if byName["unoconv"].Path != "" {
		t.Errorf("unoconv path = %q, want empty", byName["unoconv"].Path)
	}
}
