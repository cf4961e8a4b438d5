// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sofficeBins lists the LibreOffice binary candidates in preference order.
var sofficeBins = []string{"soffice", "libreoffice"}

// libreOffice implements Engine for headless LibreOffice. soffice always
// names its output after the source and drops it in --outdir, so the
// adapter converts into the destination's directory and renames the
// produced file onto dest. Each invocation gets a throwaway user profile:
// a shared profile is a single lock, and a crashed run would poison every
// conversion after it.
type libreOffice struct {
	timeout time.Duration
	run     runner
}

func newLibreOffice(timeout time.Duration, r runner) *libreOffice {
	return &libreOffice{timeout: timeout, run: r}
}

func (l *libreOffice) Name() string { return NameLibreOffice }

func (l *libreOffice) Timeout() time.Duration { return l.timeout }

func (l *libreOffice) Available() bool { return l.path() != "" }

func (l *libreOffice) path() string {
	for _, bin := range sofficeBins {
		if p, err := l.run.LookPath(bin); err == nil {
			return p
		}
	}
	return ""
}

func (l *libreOffice) Convert(ctx context.Context, src, dest string) error {
	bin := l.path()
	if bin == "" {
		return fmt.Errorf("no soffice binary on PATH (tried %s)", strings.Join(sofficeBins, ", "))
	}

	profileDir, err := os.MkdirTemp("", "docpress-profile-*")
	if err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}
	defer os.RemoveAll(profileDir)

	outDir := filepath.Dir(dest)
	args := []string{
		"--headless", "--norestore", "--nolockcheck", "--nodefault", "--nologo",
		"-env:UserInstallation=file://" + profileDir,
		"--convert-to", "pdf", "--outdir", outDir, src,
	}

	res, runErr := l.run.Run(ctx, scrubbedEnv(), bin, args...)

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	produced := filepath.Join(outDir, base+".pdf")

	if runErr != nil {
		// A deadline kill leaves no trustworthy output behind.
		if ctx.Err() != nil {
			os.Remove(produced)
			return runErr
		}
		// soffice sometimes exits non-zero over Java warnings after writing
		// a usable PDF; accept the file when it is actually there.
		info, statErr := os.Stat(produced)
		if statErr != nil || info.Size() == 0 {
			os.Remove(produced)
			return commandError(res, runErr)
		}
	} else if _, statErr := os.Stat(produced); statErr != nil {
		return fmt.Errorf("no PDF produced for %s", filepath.Base(src))
	}

	if produced != dest {
		if err := os.Rename(produced, dest); err != nil {
			return fmt.Errorf("moving produced PDF: %w", err)
		}
	}
	return nil
}

// scrubbedEnv returns the process environment with display and Java
// variables removed. Headless soffice must not attach to a GUI session,
// and a broken JVM turns every conversion into a hang.
func scrubbedEnv() []string {
	drop := map[string]bool{
		"DISPLAY":   true,
		"JAVA_HOME": true,
		"JRE_HOME":  true,
		"JDK_HOME":  true,
	}
	env := make([]string, 0, len(os.Environ())+2)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if drop[name] {
			continue
		}
		env = append(env, kv)
	}
	env = append(env, "SAL_USE_VCLPLUGIN=gen", "SAL_DISABLE_OPENCL=1")
	return env
}
