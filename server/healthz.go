package server

import "net/http"

// Healthz reports process liveness. It does not probe the upstream
// provider: a degraded upstream surfaces as per-request 502s, not a
// down healthcheck, so an external load balancer won't pull an otherwise-
// healthy instance just because the upstream is having a bad minute.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
