package main

import (
	"context"
	"log"
	"time"

	"vedaBack/internal/services"
)

const refundSweepTimeout = 5 * time.Minute

// startRefundSweeper runs the SLA refund sweep on a fixed interval. The
// sweep is idempotent, so an extra run after a missed tick is harmless.
func startRefundSweeper(ctx context.Context, svc *services.SweeperService, interval time.Duration, infoLog, errorLog *log.Logger) {
	if svc == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runOnce := func() {
			runCtx, cancel := context.WithTimeout(ctx, refundSweepTimeout)
			_, err := svc.RunRefundSweep(runCtx)
			cancel()
			if err != nil && errorLog != nil {
				errorLog.Printf("refund sweeper: sweep failed: %v", err)
			}
		}

		runOnce()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runOnce()
			}
		}
	}()
}
