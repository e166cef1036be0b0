package http

import (
	"encoding/json"
	"net/http"
)

// HandlerFunc はエラーを返す HTTP ハンドラです。返したエラーはエラー封筒で書き出されます。
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP は http.Handler を実装します。
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		writeError(w, err)
	}
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	app := FromStdError(err)
	writeJSON(w, app.Status, errorEnvelope{Err: app})
}
