package service

import "fmt"

// AttemptLimitError rejects an upload before any storage work when earlier
// failures for the same (submission, doc type) have exhausted the budget.
type AttemptLimitError struct {
	Attempts int
	Limit    int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("upload attempt limit reached: %d of %d failed attempts recorded", e.Attempts, e.Limit)
}
