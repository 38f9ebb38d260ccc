package sentry

import (
	"os"
	"time"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// Init configures Sentry from SENTRY_DSN. An empty DSN leaves the client
// disabled, which makes every capture call a no-op.
func Init() {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
}

func ReportError(err error) {
	sentry.CaptureException(err)
}

func ReportMessage(message string) {
	sentry.CaptureMessage(message)
}

// Flush drains pending events before the process exits. Call it on every
// exit path; deferred calls are skipped by os.Exit.
func Flush() {
	sentry.Flush(2 * time.Second)
}
