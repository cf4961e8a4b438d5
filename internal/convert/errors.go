// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docpress/pkg/types"
)

// PreconditionError reports a request rejected before any engine ran: the
// source is missing or unreadable, or the destination is unusable.
type PreconditionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	msg := e.Reason
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Reason, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// NoEngineError reports that conversion could not start: the engine list is
// empty, or nothing in it is installed on this host.
type NoEngineError struct {
	// Attempts records the availability probe per configured engine; empty
	// when no engines were configured at all.
	Attempts []types.Attempt
}

func (e *NoEngineError) Error() string {
	if len(e.Attempts) == 0 {
		return "no available converter: no engines configured"
	}
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Engine
	}
	return fmt.Sprintf("no available converter: none of %s is installed", strings.Join(names, ", "))
}

// TotalFailureError reports that every configured engine failed for one
// request. Attempts carries the ordered trail for diagnosis.
type TotalFailureError struct {
	Source   string
	Attempts []types.Attempt
}

func (e *TotalFailureError) Error() string {
	return fmt.Sprintf("all %d engines failed for %s", len(e.Attempts), filepath.Base(e.Source))
}
