package internal

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DefaultThrottleInterval is the minimum spacing between two throttled messages
const DefaultThrottleInterval = time.Minute

// ThrottleLogger forwards the first message and then at most one message per
// interval. Suppressed messages are counted and reported with the next one
// that gets through.
type ThrottleLogger struct {
	logger     *slog.Logger
	gate       *rate.Sometimes
	suppressed int
}

// NewThrottleLogger wraps logger; a zero interval uses DefaultThrottleInterval.
// A ThrottleLogger is not safe for concurrent use.
func NewThrottleLogger(logger *slog.Logger, interval time.Duration) *ThrottleLogger {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &ThrottleLogger{
		logger: OrDefault(logger),
		gate:   &rate.Sometimes{First: 1, Interval: interval},
	}
}

// Error logs msg at error level unless throttled. Reports whether it was written.
func (t *ThrottleLogger) Error(msg string, args ...any) bool {
	return t.log(slog.LevelError, msg, args...)
}

// Warn logs msg at warn level unless throttled. Reports whether it was written.
func (t *ThrottleLogger) Warn(msg string, args ...any) bool {
	return t.log(slog.LevelWarn, msg, args...)
}

// Suppressed returns the number of messages dropped since the last write
func (t *ThrottleLogger) Suppressed() int { return t.suppressed }

func (t *ThrottleLogger) log(level slog.Level, msg string, args ...any) bool {
	written := false
	t.gate.Do(func() {
		if t.suppressed > 0 {
			args = append(args, "suppressed", t.suppressed)
		}
		t.logger.Log(context.Background(), level, msg, args...)
		t.suppressed = 0
		written = true
	})
	if !written {
		t.suppressed++
	}
	return written
}
