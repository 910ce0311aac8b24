// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/anchorchain/business/sys/metrics"
	"github.com/ardanlabs/anchorchain/business/sys/validate"
	"github.com/ardanlabs/anchorchain/business/web/errs"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/state"
	"github.com/ardanlabs/anchorchain/foundation/events"
	"github.com/ardanlabs/anchorchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// urlSafe maps the URL safe base64 alphabet back to the standard one.
var urlSafe = strings.NewReplacer("-", "+", "_", "/")

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Anchor records a new payload in the ledger.
func (h Handlers) Anchor(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var na NewAnchor
	if err := web.Decode(r, &na); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(na); err != nil {
		return err
	}

	blk, index := h.State.Anchor([]byte(*na.Payload))
	metrics.AddAnchors(ctx)

	h.Log.Infow("anchor", "traceid", v.TraceID, "index", index, "digest", blk.Digest().Hex())

	resp := anchored{
		Digest: blk.Digest().String(),
		Index:  index,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Ledger returns the encoded ledger. The format query parameter selects
// the document layout and defaults to the store format.
func (h Handlers) Ledger(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	format := ledger.FormatStore

	if name := r.URL.Query().Get("format"); name != "" {
		var err error
		if format, err = ledger.ParseFormat(name); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	doc, err := h.State.Encode(format)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.RespondDocument(ctx, w, doc, http.StatusOK)
}

// Validate re-derives every digest of the ledger held by the node.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.Validate()
	if err != nil {
		return errs.FromLedger(err)
	}

	resp := validation{
		Status: "valid",
		Blocks: blocks,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the blocks of the ledger in order.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blks := h.State.RetrieveBlocks()
	if len(blks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	resp := make([]block, len(blks))
	for i, blk := range blks {
		data, _ := h.State.RetrievePayload(blk.PayloadDigest())
		resp[i] = toBlock(i, blk, len(data))
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Payload returns the content stored under a payload digest. The digest may
// use the URL safe alphabet so it can be placed in a path without escaping.
func (h Handlers) Payload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	d, err := digest.Parse(urlSafe.Replace(web.Param(r, "digest")))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	data, ok := h.State.RetrievePayload(d)
	if !ok {
		return errs.NewTrusted(errors.New("payload not found"), http.StatusNotFound)
	}

	resp := payload{
		Digest:  d.String(),
		Payload: string(data),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
