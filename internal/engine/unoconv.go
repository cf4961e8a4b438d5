// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "time"

// newUnoconv wraps the unoconv bridge, which drives a LibreOffice listener
// to render documents.
func newUnoconv(timeout time.Duration, r runner) *cliEngine {
	return &cliEngine{
		name:    NameUnoconv,
		bin:     "unoconv",
		timeout: timeout,
		args: func(src, dest string) []string {
			return []string{"-f", "pdf", "-o", dest, src}
		},
		run: r,
	}
}
