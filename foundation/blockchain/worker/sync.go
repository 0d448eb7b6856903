package worker

// Sync brings this node up to the longest valid chain held by the known
// peers before any mining takes place.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	w.runResolveOperation()
}
