package worker

// shareLedgerOperations handles sending the ledger to peers.
func (w *Worker) shareLedgerOperations() {
	w.evHandler("worker: shareLedgerOperations: G started")
	defer w.evHandler("worker: shareLedgerOperations: G completed")

	for {
		select {
		case <-w.shareLedger:
			if !w.isShutdown() {
				w.runShareLedgerOperation()
			}
		case <-w.shut:
			w.evHandler("worker: shareLedgerOperations: received shut signal")
			return
		}
	}
}

// runShareLedgerOperation sends the current ledger to the known peers.
func (w *Worker) runShareLedgerOperation() {
	w.evHandler("worker: runShareLedgerOperation: started")
	defer w.evHandler("worker: runShareLedgerOperation: completed")

	w.state.NetSendLedgerToPeers()
}
