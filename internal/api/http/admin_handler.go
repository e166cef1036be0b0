package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amakane-hakari/sortkv/internal/eviction"
)

// EvictionAdmin は管理エンドポイントが操作するポリシーの管理面です。
// *eviction.Sorted[string, string] が満たします。
type EvictionAdmin interface {
	MaxSize() int
	SetMaxSize(n int) error
	CurrentSize() int
	Snapshot() []eviction.Entry[string, string]
}

const defaultCandidateLimit = 100

type adminHandler struct {
	admin EvictionAdmin
}

func (h *adminHandler) mount(r chi.Router) {
	r.Route("/admin/eviction", func(r chi.Router) {
		r.Method(http.MethodGet, "/", HandlerFunc(h.status))
		r.Method(http.MethodPut, "/max-size", HandlerFunc(h.setMaxSize))
		r.Method(http.MethodGet, "/candidates", HandlerFunc(h.candidates))
	})
}

type statusDTO struct {
	MaxSize     int `json:"max_size"`
	CurrentSize int `json:"current_size"`
}

type maxSizeRequest struct {
	MaxSize int `json:"max_size"`
}

type candidatesDTO struct {
	Total int        `json:"total"`
	Items []valueDTO `json:"items"`
}

func (h *adminHandler) status(w http.ResponseWriter, _ *http.Request) error {
	writeSuccess(w, http.StatusOK, statusDTO{
		MaxSize:     h.admin.MaxSize(),
		CurrentSize: h.admin.CurrentSize(),
	})
	return nil
}

func (h *adminHandler) setMaxSize(w http.ResponseWriter, r *http.Request) error {
	var req maxSizeRequest
	if err := DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.admin.SetMaxSize(req.MaxSize); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, statusDTO{
		MaxSize:     h.admin.MaxSize(),
		CurrentSize: h.admin.CurrentSize(),
	})
	return nil
}

// candidates は追い出し順の先頭 limit 件を返します。
func (h *adminHandler) candidates(w http.ResponseWriter, r *http.Request) error {
	limit, err := positiveQuery(r, "limit", defaultCandidateLimit)
	if err != nil {
		return err
	}

	snap := h.admin.Snapshot()
	out := candidatesDTO{Total: len(snap), Items: make([]valueDTO, 0, min(limit, len(snap)))}
	for _, e := range snap {
		if len(out.Items) == limit {
			break
		}
		out.Items = append(out.Items, valueDTO{Key: e.Key(), Value: e.Value()})
	}
	writeSuccess(w, http.StatusOK, out)
	return nil
}
