// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeProduced simulates soffice dropping its output into --outdir under
// the source's name.
func writeProduced(t *testing.T, outDir, src string) string {
	t.Helper()
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	produced := filepath.Join(outDir, base+".pdf")
	if err := os.WriteFile(produced, []byte("%PDF-1.4\nfake content\n"), 0o644); err != nil {
		t.Fatalf("writing produced file: %v", err)
	}
	return produced
}

func setupPaths(t *testing.T) (src, dest, outDir string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "doc.docx")
	if err := os.WriteFile(src, []byte("docx"), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	outDir = filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("creating out dir: %v", err)
	}
	return src, filepath.Join(outDir, "final.pdf"), outDir
}

func TestLibreOfficeAvailability(t *testing.T) {
	tests := []struct {
		name     string
		bins     map[string]bool
		want     bool
		wantPath string
	}{
		{
			name:     "soffice on PATH",
			bins:     map[string]bool{"soffice": true},
			want:     true,
			wantPath: "/usr/bin/soffice",
		},
		{
			name:     "libreoffice fallback when soffice missing",
			bins:     map[string]bool{"libreoffice": true},
			want:     true,
			wantPath: "/usr/bin/libreoffice",
		},
		{
			name: "neither installed",
			bins: map[string]bool{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLibreOffice(time.Minute, &mockRunner{availableBins: tt.bins})
			if got := l.Available(); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
			if got := l.path(); got != tt.wantPath {
				t.Errorf("path() = %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestLibreOfficeConvert(t *testing.T) {
	src, dest, outDir := setupPaths(t)
	t.Setenv("DISPLAY", ":0")

	run := &mockRunner{
		availableBins: map[string]bool{"soffice": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			writeProduced(t, outDir, src)
			return runResult{}, nil
		},
	}
	l := newLibreOffice(time.Minute, run)

	if err := l.Convert(context.Background(), src, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination PDF missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "doc.pdf")); !os.IsNotExist(err) {
		t.Error("intermediate file should have been renamed away")
	}

	if len(run.calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(run.calls))
	}
	call := run.calls[0]
	if call.name != "/usr/bin/soffice" {
		t.Errorf("binary = %q, want resolved soffice path", call.name)
	}

	args := strings.Join(call.args, " ")
	for _, want := range []string{"--headless", "--convert-to pdf", "--outdir " + outDir} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
	if call.args[len(call.args)-1] != src {
		t.Errorf("last arg = %q, want source path", call.args[len(call.args)-1])
	}

	hasProfile := false
	for _, a := range call.args {
		if strings.HasPrefix(a, "-env:UserInstallation=file://") {
			hasProfile = true
		}
	}
	if !hasProfile {
		t.Error("args missing throwaway profile dir")
	}

	hasVCL, hasDisplay := false, false
	for _, kv := range call.env {
		if kv == "SAL_USE_VCLPLUGIN=gen" {
			hasVCL = true
		}
		if strings.HasPrefix(kv, "DISPLAY=") {
			hasDisplay = true
		}
	}
	if !hasVCL {
		t.Error("env missing SAL_USE_VCLPLUGIN=gen")
	}
	if hasDisplay {
		t.Error("DISPLAY should be scrubbed from the environment")
	}
}

func TestLibreOfficeLenientExit(t *testing.T) {
	src, dest, outDir := setupPaths(t)

	// soffice wrote a usable PDF but exited non-zero over a Java warning.
	run := &mockRunner{
		availableBins: map[string]bool{"soffice": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			writeProduced(t, outDir, src)
			return runResult{stderr: "Warning: failed to read path from javaldx", exitCode: 1},
				errors.New("exit status 1")
		},
	}
	l := newLibreOffice(time.Minute, run)

	if err := l.Convert(context.Background(), src, dest); err != nil {
		t.Fatalf("non-zero exit with valid output should succeed, got: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination PDF missing: %v", err)
	}
}

func TestLibreOfficeExitErrorWithoutOutput(t *testing.T) {
	src, dest, _ := setupPaths(t)

	run := &mockRunner{
		availableBins: map[string]bool{"soffice": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			return runResult{stderr: "Error: source file could not be loaded", exitCode: 1},
				errors.New("exit status 1")
		},
	}
	l := newLibreOffice(time.Minute, run)

	err := l.Convert(context.Background(), src, dest)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "source file could not be loaded") {
		t.Errorf("error should carry stderr excerpt, got: %v", err)
	}
}

func TestLibreOfficeCleanExitWithoutOutput(t *testing.T) {
	src, dest, _ := setupPaths(t)

	run := &mockRunner{
		availableBins: map[string]bool{"soffice": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			return runResult{}, nil
		},
	}
	l := newLibreOffice(time.Minute, run)

	err := l.Convert(context.Background(), src, dest)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no PDF produced") {
		t.Errorf("error = %v, want no PDF produced", err)
	}
}

func TestLibreOfficeKilledNotLenient(t *testing.T) {
	src, dest, outDir := setupPaths(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A partial PDF left behind by a killed run must not be accepted.
	run := &mockRunner{
		availableBins: map[string]bool{"soffice": true},
		runFunc: func(ctx context.Context, env []string, name string, args []string) (runResult, error) {
			writeProduced(t, outDir, src)
			return runResult{}, ctx.Err()
		},
	}
	l := newLibreOffice(time.Minute, run)

	err := l.Convert(ctx, src, dest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "doc.pdf")); !os.IsNotExist(statErr) {
		t.Error("partial output should have been removed")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination should not exist after a killed run")
	}
}

func TestLibreOfficeConvertWithoutBinary(t *testing.T) {
	src, dest, _ := setupPaths(t)

	l := newLibreOffice(time.Minute, &mockRunner{})
	err := l.Convert(context.Background(), src, dest)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no soffice binary on PATH") {
		t.Errorf("error = %v, want no soffice binary on PATH", err)
	}
}
