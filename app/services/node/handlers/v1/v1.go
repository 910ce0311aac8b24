// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/anchorchain/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/anchorchain/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/state"
	"github.com/ardanlabs/anchorchain/foundation/events"
	"github.com/ardanlabs/anchorchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/ledger/anchor", pbl.Anchor)
	app.Handle(http.MethodGet, version, "/ledger", pbl.Ledger)
	app.Handle(http.MethodGet, version, "/ledger/validate", pbl.Validate)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks)
	app.Handle(http.MethodGet, version, "/payload/:digest", pbl.Payload)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/ledger", prv.Ledger)
	app.Handle(http.MethodPost, version, "/node/ledger/submit", prv.SubmitLedger)
}
