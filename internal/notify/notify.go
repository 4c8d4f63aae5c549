// Package notify defines the outbound notification contract. The core never
// renders message bodies; it hands structured payloads to a dispatcher and
// treats every dispatch as best-effort. Dispatch failures are logged by
// callers and never change the outcome of the triggering operation.
package notify

import "context"

// Kind names a notification template owned by the downstream dispatcher.
type Kind string

const (
	KindSubmissionConfirmation Kind = "submission-confirmation"
	KindDepartmentNotification Kind = "department-notification"
	KindUploadConfirmation     Kind = "upload-confirmation"
	KindUploadFailure          Kind = "upload-failure"
)

// Payload is the structured data a template is rendered from.
type Payload map[string]any

// Dispatcher sends one notification. Implementations must be safe for
// concurrent use.
type Dispatcher interface {
	Send(ctx context.Context, kind Kind, payload Payload) error
}
