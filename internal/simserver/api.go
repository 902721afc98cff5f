// Package simserver serves the simulator API over HTTP. It is the server side of
// package simenv and is backed by a Handler, e.g. the fake simulator in
// internal/fakes.
package simserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/serverless-sim/simclient/internal/simapi"
	"gopkg.in/inconshreveable/log15.v2"
)

//go:generate go run ../../cmd/simapigen -in ../../simenv/apis.yaml -out handler_gen.go -pkg simserver -mode server

// Requests larger than this are rejected.
const maxRequestSize = 1 << 20

// NewAPI creates handlers for the simulator API.
func NewAPI(h Handler, logger log15.Logger) http.Handler {
	if logger == nil {
		logger = log15.Root()
	}
	api := &simAPI{handler: h, logger: logger}
	router := mux.NewRouter()
	api.registerRoutes(router)
	return router
}

type simAPI struct {
	handler Handler
	logger  log15.Logger
}

// decodeRequest reads the JSON request body into v. An empty body leaves v at
// its zero value. It serves an error and returns false if the body is invalid.
func (api *simAPI) decodeRequest(w http.ResponseWriter, r *http.Request, name string, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		api.logger.Debug("API: bad request", "api", name, "error", err)
		serveError(w, err, http.StatusBadRequest)
		return false
	}
	return true
}

// serveResult writes the envelope of res, or an error.
func (api *simAPI) serveResult(w http.ResponseWriter, name string, res simapi.Variant, err error) {
	if err != nil {
		api.logger.Error("API: handler failed", "api", name, "error", err)
		serveError(w, err, http.StatusInternalServerError)
		return
	}
	if res == nil {
		api.logger.Error("API: handler returned no result", "api", name)
		serveError(w, errors.New("no result"), http.StatusInternalServerError)
		return
	}
	resp, err := simapi.Encode(res)
	if err != nil {
		api.logger.Error("API: internal error while encoding response", "api", name, "error", err)
		serveError(w, errors.New("internal error"), http.StatusInternalServerError)
		return
	}
	api.logger.Debug("API: served", "api", name, "variant", res.EnvelopeID())
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}

func serveError(w http.ResponseWriter, err error, status int) {
	resp, _ := json.Marshal(&simapi.Error{Error: err.Error()})
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	w.Write(resp)
}
