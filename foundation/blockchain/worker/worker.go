// Package worker implements ledger sharing and peer updates for the node.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/state"
)

// peerUpdateInterval represents the interval of finding new peer nodes
// and dropping the ones that can't be reached.
const peerUpdateInterval = time.Minute

// =============================================================================

// Worker manages the background workflows for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	shareLedger  chan struct{}
	evHandler    state.EventHandler
	shutdownOnce sync.Once
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	return run(st, evHandler, peerUpdateInterval)
}

func run(st *state.State, evHandler state.EventHandler, interval time.Duration) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := Worker{
		state:       st,
		ticker:      time.NewTicker(interval),
		shut:        make(chan struct{}),
		shareLedger: make(chan struct{}, 1),
		evHandler:   evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.shareLedgerOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.shutdownOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// SignalShareLedger asks for the ledger to be sent to the known peers. If
// there is already a signal pending, the pending share will send the latest
// ledger so this one is dropped.
func (w *Worker) SignalShareLedger() {
	select {
	case w.shareLedger <- struct{}{}:
		w.evHandler("worker: SignalShareLedger: share signaled")
	default:
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
