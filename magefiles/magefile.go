//go:build mage

// Package main contains Mage build targets for docpress developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default is the target a bare mage invocation runs.
var Default = Build

// projectDirs lists the working directories a conversion workspace expects.
var projectDirs = []string{
	"output",
	"reports",
}

const (
	binDir  = "bin"
	binName = "docpress"
	cmdPkg  = "./cmd/docpress"
)

// Init creates the workspace directories and a starter config file.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if err := writeStarterConfig(); err != nil {
		return err
	}
	fmt.Println("Workspace initialized.")
	return nil
}

// Build compiles the CLI binary into bin/ with the version stamped in.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version := gitVersion()
	ldflags := fmt.Sprintf("-X main.version=%s", version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// All builds the binary and runs the tests.
func All() {
	mg.SerialDeps(Build, Test)
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binDir)
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "dev"
	}
	return v
}

func writeStarterConfig() error {
	const path = "docpress.yaml"
	if _, err := os.Stat(path); err == nil {
		fmt.Println("  ", path, "(exists, left alone)")
		return nil
	}

	const starter = `# docpress configuration
convert:
  # engines: [unoconv, docx2pdf, pandoc, libreoffice]
  timeout: 3m
  timeout_per_mb: 15s
compression:
  enabled: false
  quality: ebook
history:
  path: ""
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Println("  ", path)
	return nil
}
