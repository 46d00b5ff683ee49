package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSelectionCancelled means the user dismissed the mode prompt. The
	// whole pipeline aborts before any upload is attempted.
	ErrSelectionCancelled = errors.New("mode selection cancelled")

	// ErrUnknownMode means the supplied key is outside the closed mode set.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnsupportedPayload means the share payload shape was not recognized.
	// Nothing is uploaded or enqueued.
	ErrUnsupportedPayload = errors.New("unsupported share payload")
)

// UploadError is a content-store failure on one asset branch. Sibling
// branches in the same batch are unaffected.
type UploadError struct {
	Object string // storage path of the attempted object
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Object, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PublishError is a queue write failure. When it follows a successful
// upload the stored blob stays orphaned; see the dispatcher log line.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string { return "publish: " + e.Err.Error() }

func (e *PublishError) Unwrap() error { return e.Err }
