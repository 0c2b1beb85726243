package clob

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/GoPolymarket/polymarket-go-sdk/internal/logger"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/apierror"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/metrics"
)

// heartbeat is a cancellable keep-alive loop. The server returns an id on
// each beat that the next beat must echo; losing a beat resets the chain.
type heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startHeartbeat launches the keep-alive loop. The returned handle stops it.
func (c *Client) startHeartbeat(interval time.Duration) *heartbeat {
	ctx, cancel := context.WithCancel(context.Background())
	hb := &heartbeat{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(hb.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastID *uuid.UUID
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				resp, err := c.postHeartbeat(ctx, lastID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					metrics.HeartbeatFailures.Inc()
					logger.Warn("heartbeat failed", "error", err)
					lastID = nil
					continue
				}
				lastID = resp.HeartbeatID
			}
		}
	}()

	return hb
}

// stop cancels the loop and waits for it to exit.
func (h *heartbeat) stop() {
	h.cancel()
	<-h.done
}

// ensureNoHeartbeat guards against starting a second keep-alive loop on the
// same session.
func ensureNoHeartbeat(hb *heartbeat) error {
	if hb != nil {
		return apierror.Validation("unable to create another heartbeat task: one is already running")
	}
	return nil
}
