package errors

import "context"

// Tracker ships errors to an external service. Implementations tag events with the
// session carried by ctx and must be safe for concurrent use.
type Tracker interface {
	CaptureError(ctx context.Context, err error, tags map[string]string) error
	CaptureMessage(ctx context.Context, message string, level Level, tags map[string]string) error

	// Flush blocks until queued events are sent or ctx expires
	Flush(ctx context.Context) error
}

// Level is the severity attached to a captured message
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

func (l Level) String() string {
	return string(l)
}
