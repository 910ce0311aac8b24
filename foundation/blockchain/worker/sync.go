package worker

// Sync updates the peer list and, when this node starts with an empty
// ledger, takes the ledger from the first peer that has one.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// A local ledger is never replaced during start up.
		if _, ok := w.state.RetrieveLatestBlock(); ok || peerStatus.Blocks == 0 {
			continue
		}

		w.evHandler("worker: sync: retrievePeerLedger: %s: blocks[%d]", pr.Host, peerStatus.Blocks)

		if _, err := w.state.NetRequestPeerLedger(pr); err != nil {
			w.evHandler("worker: sync: retrievePeerLedger: %s: ERROR: %s", pr.Host, err)
		}
	}
}
