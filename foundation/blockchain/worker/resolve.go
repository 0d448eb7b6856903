package worker

import (
	"context"
)

// resolveOperations handles resolving the chain against the known peers.
func (w *Worker) resolveOperations() {
	w.evHandler("worker: resolveOperations: G started")
	defer w.evHandler("worker: resolveOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runResolveOperation()
			}
		case <-w.shut:
			w.evHandler("worker: resolveOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation replaces the local chain with the longest valid chain
// held by the known peers.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.ResolveInterval)
	defer cancel()

	res, err := w.state.Resolve(ctx)
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	if res.Replaced {
		w.evHandler("viewer: chain: replaced: length[%d]", len(res.Chain))
	}
}
