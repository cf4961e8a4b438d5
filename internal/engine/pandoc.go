// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "time"

// newPandoc wraps pandoc, which renders PDF through its configured LaTeX
// engine. Rendering quality differs from the office-based engines; the
// chain only cares that a valid PDF comes out.
func newPandoc(timeout time.Duration, r runner) *cliEngine {
	return &cliEngine{
		name:    NamePandoc,
		bin:     "pandoc",
		timeout: timeout,
		args: func(src, dest string) []string {
			return []string{src, "-o", dest}
		},
		run: r,
	}
}
