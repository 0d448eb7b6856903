// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/miners"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	Evts   *events.Events
	Miners *miners.Store
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		NS:     cfg.NS,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
		Miners: cfg.Miners,
	}

	app.Handle(http.MethodGet, version, "/chain", pbl.Chain)
	app.Handle(http.MethodGet, version, "/mine", pbl.Mine)
	app.Handle(http.MethodPost, version, "/transactions/new", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/mempool", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/nodes/resolve", pbl.Resolve)
	app.Handle(http.MethodGet, version, "/ping", pbl.Ping)
	app.Handle(http.MethodGet, version, "/rewards", pbl.Rewards)
	app.Handle(http.MethodGet, version, "/metrics", pbl.Metrics)
	app.Handle(http.MethodPost, version, "/miners/metrics", pbl.SubmitMinerReport)
	app.Handle(http.MethodGet, version, "/miners/metrics", pbl.MinerReports)
	app.Handle(http.MethodGet, version, "/events", pbl.Events)
}
