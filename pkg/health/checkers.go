package health

import (
	"context"
	"runtime"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck returns a liveness check that fails when the number of
// live goroutines exceeds threshold. A steadily growing count usually means a
// leak.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		count := runtime.NumGoroutine()
		if count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// GCMaxPauseCheck returns a liveness check that fails when any recent garbage
// collection pause exceeded threshold.
func GCMaxPauseCheck(threshold time.Duration) CheckFunc {
	return func(context.Context) error {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		for _, pause := range stats.PauseNs {
			if time.Duration(pause) > threshold {
				return errors.Errorf("gc pause %s exceeds threshold %s", time.Duration(pause), threshold)
			}
		}
		return nil
	}
}
