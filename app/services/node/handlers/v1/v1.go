// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorpcoin/ledger/app/services/node/handlers/v1/public"
	"github.com/gorpcoin/ledger/foundation/blockchain/state"
	"github.com/gorpcoin/ledger/foundation/events"
	"github.com/gorpcoin/ledger/foundation/web"
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
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/chain/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/chain/difficulty/:length", pbl.Difficulty)
	app.Handle(http.MethodGet, version, "/blocks/list/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodPost, version, "/blocks/propose", pbl.ProposeBlock)
	app.Handle(http.MethodPost, version, "/tx/validate", pbl.ValidateTransaction)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/tx/pending", pbl.Mempool)
}
