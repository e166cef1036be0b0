package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20 // 1MB

// DecodeJSON はリクエストボディの JSON 値を 1 つだけ dst にデコードします。
// 未知のフィールドや複数の値は InvalidJSON になります。
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return InvalidJSON("empty body")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var se *json.SyntaxError
		var ute *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return InvalidJSON("empty body")
		case errors.As(err, &se):
			return InvalidJSON("malformed JSON")
		case errors.As(err, &ute):
			return InvalidJSON("type mismatch in JSON: " + ute.Field)
		default:
			return InvalidJSON("invalid JSON")
		}
	}
	if dec.More() {
		return InvalidJSON("multiple JSON values")
	}
	return nil
}

func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if key == "" {
		return "", BadRequest("empty key")
	}
	return key, nil
}

// positiveQuery はクエリ name を正の整数として読みます。無ければ def。
func positiveQuery(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, BadRequest(name + " must be a positive integer")
	}
	return n, nil
}
