// Package noop provides the tracker used when SENTRY_DSN is empty.
package noop

import (
	"context"

	"studiodesk/pkg/errors"
)

// Tracker drops every event
type Tracker struct{}

func New() *Tracker {
	return &Tracker{}
}

func (*Tracker) CaptureError(context.Context, error, map[string]string) error { return nil }

func (*Tracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (*Tracker) Flush(context.Context) error { return nil }

var _ errors.Tracker = (*Tracker)(nil)
