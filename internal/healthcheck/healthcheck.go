// Package healthcheck serves the single liveness probe the acceptor and
// world tick are supervised alongside (§6 "Minimal CLI"): a process that
// can answer GET /healthcheck is considered alive. It carries no
// dependency checks of its own — DB/asset/script failures surface by
// taking down the errgroup, not by failing this endpoint.
package healthcheck

import "net/http"

// Handler serves GET /healthcheck with body "1" and a 200 status. It is
// stateless and safe for concurrent use.
type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("1"))
}

// Register adds the /healthcheck route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthcheck", h.ServeHTTP)
}
