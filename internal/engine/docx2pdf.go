// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "time"

// newDocx2PDF wraps the docx2pdf tool. It drives Microsoft Word through the
// platform automation APIs, so it only runs on macOS and Windows; Available
// is false everywhere else.
func newDocx2PDF(timeout time.Duration, r runner) *cliEngine {
	return &cliEngine{
		name:    NameDocx2PDF,
		bin:     "docx2pdf",
		timeout: timeout,
		goos:    []string{"darwin", "windows"},
		args: func(src, dest string) []string {
			return []string{src, dest}
		},
		run: r,
	}
}
