package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ilog "github.com/amakane-hakari/sortkv/internal/log"
	"github.com/amakane-hakari/sortkv/internal/store"
)

// Deps はルーターが依存するコンポーネントです。
// Admin と Metrics は nil の場合、対応するエンドポイントを公開しません。
type Deps struct {
	Store   *store.Store[string, string]
	Admin   EvictionAdmin
	Logger  ilog.Logger
	Metrics http.Handler
}

// NewRouter は HTTP ルーターを作成します。
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoverMiddleware(d.Logger))
	r.Use(AccessLog(d.Logger))

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	kv := &kvHandler{st: d.Store}
	kv.mount(r)

	if d.Admin != nil {
		ad := &adminHandler{admin: d.Admin}
		ad.mount(r)
	}
	return r
}
