package service

import (
	"fmt"
	"strings"
)

// IncompleteSubmissionError reports the exact required doc types missing from
// a submission at submit time. Not retryable as-is; the caller must supply the
// missing documents first.
type IncompleteSubmissionError struct {
	Missing []string
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("submission incomplete: missing required documents: %s", strings.Join(e.Missing, ", "))
}

// ReferenceAllocationError is fatal: the bounded retry-with-regenerate loop
// exhausted its attempts without finding a free reference.
type ReferenceAllocationError struct {
	Attempts int
}

func (e *ReferenceAllocationError) Error() string {
	return fmt.Sprintf("reference allocation failed after %d attempts", e.Attempts)
}
