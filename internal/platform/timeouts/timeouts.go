// Package timeouts defines shared timeout constants for crown commands and
// storage.
package timeouts

import "time"

// StoreBusy bounds how long a sqlite connection waits on a locked database.
const StoreBusy = 5 * time.Second

// TelemetryShutdown bounds how long pending spans are flushed on exit.
const TelemetryShutdown = 5 * time.Second
