// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/anchorchain/business/sys/metrics"
	"github.com/ardanlabs/anchorchain/business/web/errs"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/state"
	"github.com/ardanlabs/anchorchain/foundation/web"
	"go.uber.org/zap"
)

// maxDocument is the largest ledger document a peer can submit.
const maxDocument = 64 << 20

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// SubmitLedger takes a ledger document received from a peer, validates it
// and if that passes and it extends the local ledger, replaces the local
// ledger. A ledger that forks from the local one is a conflict.
func (h Handlers) SubmitLedger(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	doc, err := web.ReadBody(r, maxDocument)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to read ledger: %w", err), http.StatusBadRequest)
	}

	changed, err := h.State.SubmitLedger(doc)
	if err != nil {
		metrics.AddRejected(ctx)
		h.Log.Infow("submit ledger", "traceid", v.TraceID, "status", "rejected", "kind", errs.Kind(err))
		return errs.FromLedger(err)
	}

	h.Log.Infow("submit ledger", "traceid", v.TraceID, "status", "accepted", "changed", changed)

	return web.Respond(ctx, w, nil, http.StatusNoContent)
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// Ledger returns the ledger in the store format for peers.
func (h Handlers) Ledger(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	doc, err := h.State.Encode(ledger.FormatStore)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.RespondDocument(ctx, w, doc, http.StatusOK)
}
