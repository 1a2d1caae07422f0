// Package txlog is the engine's thin logging wrapper. The teacher repo
// does not log at all in its production paths (only comments), so this
// follows the pack's other convention instead: getsentry/sentry-go for
// reporting the one class of event the teacher repo treats specially
// with a panic — programmer/assertion errors (see engine.go's
// GenerateKey, "Em caso improvável de erro no gerador de entropia").
package txlog

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Infof writes an operational line to stderr. Non-fatal, never reported
// to Sentry.
func Infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[txcore] "+format+"\n", args...)
}

// Warnf writes a warning line to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[txcore] warn: "+format+"\n", args...)
}

// Fatal reports a programmer/assertion error to Sentry (if initialized)
// and then panics, mirroring the teacher's "em caso improvável" panic
// path in engine.go. Called only from invariant checks that must never
// trip in a correct build.
func Fatal(err error) {
	sentry.CaptureException(err)
	sentry.Flush(flushTimeout)
	panic(err)
}

// InitSentry wires Sentry reporting using dsn. Passing an empty dsn
// leaves Sentry disabled; CaptureException then becomes a no-op, which
// is sentry-go's own documented behavior for an unconfigured client.
func InitSentry(dsn string) error {
	return sentry.Init(sentry.ClientOptions{Dsn: dsn})
}
