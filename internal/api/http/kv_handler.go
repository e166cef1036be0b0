package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amakane-hakari/sortkv/internal/store"
)

type kvHandler struct {
	st *store.Store[string, string]
}

func (h *kvHandler) mount(r chi.Router) {
	r.Route("/kvs/{key}", func(r chi.Router) {
		r.Method(http.MethodPut, "/", HandlerFunc(h.put))
		r.Method(http.MethodGet, "/", HandlerFunc(h.get))
		r.Method(http.MethodDelete, "/", HandlerFunc(h.del))
		r.Method(http.MethodPost, "/pin", HandlerFunc(h.pin))
		r.Method(http.MethodDelete, "/pin", HandlerFunc(h.unpin))
	})
}

type putRequest struct {
	Value string `json:"value"`
	TTLMs int64  `json:"ttl_ms,omitempty"`
}

type valueDTO struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type pinDTO struct {
	Key    string `json:"key"`
	Pinned bool   `json:"pinned"`
}

func (h *kvHandler) put(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	var req putRequest
	if err := DecodeJSON(r, &req); err != nil {
		return err
	}
	switch {
	case req.TTLMs < 0:
		return BadRequest("ttl_ms must not be negative")
	case req.TTLMs > 0:
		h.st.SetWithTTL(key, req.Value, time.Duration(req.TTLMs)*time.Millisecond)
	default:
		h.st.Set(key, req.Value)
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: req.Value})
	return nil
}

func (h *kvHandler) get(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	v, ok := h.st.Get(key)
	if !ok {
		return NotFound("key not found")
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: v})
	return nil
}

func (h *kvHandler) del(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	h.st.Delete(key)
	writeSuccess(w, http.StatusOK, valueDTO{Key: key})
	return nil
}

func (h *kvHandler) pin(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if !h.st.Pin(key) {
		return NotFound("key not found")
	}
	writeSuccess(w, http.StatusOK, pinDTO{Key: key, Pinned: true})
	return nil
}

func (h *kvHandler) unpin(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if !h.st.Unpin(key) {
		return Conflict("key is not pinned")
	}
	writeSuccess(w, http.StatusOK, pinDTO{Key: key, Pinned: false})
	return nil
}
