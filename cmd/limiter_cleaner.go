package main

import (
	"context"
	"log"
	"time"

	"vedaBack/internal/ratelimit"
)

const limiterCleanInterval = 10 * time.Minute

// startLimiterCleaner evicts expired local rate-limit windows so fallback
// counters do not grow without bound during a long redis outage.
func startLimiterCleaner(ctx context.Context, limiters []*ratelimit.Limiter, infoLog *log.Logger) {
	if len(limiters) == 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(limiterCleanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := 0
				for _, l := range limiters {
					removed += l.SweepLocal(time.Now())
				}
				if removed > 0 && infoLog != nil {
					infoLog.Printf("limiter cleaner: evicted %d expired windows", removed)
				}
			}
		}
	}()
}
