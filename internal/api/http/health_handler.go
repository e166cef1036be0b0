package http

import (
	"net/http"
	"sync/atomic"
)

var draining atomic.Bool

// SetDraining はドレイニング状態を設定します。ドレイニング中の /health は 503 を返します。
func SetDraining(v bool) {
	draining.Store(v)
}

type healthDTO struct {
	Status string `json:"status"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	if draining.Load() {
		writeJSON(w, http.StatusServiceUnavailable, healthDTO{Status: "draining"})
		return
	}
	writeJSON(w, http.StatusOK, healthDTO{Status: "ok"})
}
