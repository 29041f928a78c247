package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MayankSewatkar/vantagepoint/internal/domain"
)

// internalErrorDetail is the only message a client sees for a 500.
const internalErrorDetail = "Internal Server Error"

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"detail":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a {"detail": msg} error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Detail: msg})
}

// writeInvalid sends a 422 for a rejected request parameter or body.
func writeInvalid(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

// writeInternal logs err and sends a generic 500.
func writeInternal(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg, slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, internalErrorDetail)
}

// invalidParam builds a validation error wrapping domain.ErrInvalidParam.
// The message is what the client sees.
type invalidParam struct {
	msg string
}

func (e *invalidParam) Error() string { return e.msg }
func (e *invalidParam) Unwrap() error { return domain.ErrInvalidParam }

func invalidf(format string, args ...any) error {
	return &invalidParam{msg: fmt.Sprintf(format, args...)}
}

// queryInt reads an integer query parameter bounded to [lo, hi]. A missing
// parameter yields def; a present but malformed or out-of-range one is an
// error.
func queryInt(q url.Values, name string, def, lo, hi int) (int, error) {
	if !q.Has(name) {
		return def, nil
	}
	raw := q.Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidf("%s: value is not a valid integer: %q", name, raw)
	}
	if n < lo {
		return 0, invalidf("%s: ensure this value is greater than or equal to %d", name, lo)
	}
	if n > hi {
		return 0, invalidf("%s: ensure this value is less than or equal to %d", name, hi)
	}
	return n, nil
}

// queryMinInt reads an integer query parameter with only a lower bound.
func queryMinInt(q url.Values, name string, def, lo int) (int, error) {
	return queryInt(q, name, def, lo, math.MaxInt)
}

// queryFloat reads an optional float query parameter.
func queryFloat(q url.Values, name string) (*float64, error) {
	if !q.Has(name) {
		return nil, nil
	}
	raw := q.Get(name)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalidf("%s: value is not a valid float: %q", name, raw)
	}
	return &f, nil
}

// queryString reads a string query parameter, falling back to def when it is
// absent.
func queryString(q url.Values, name, def string) string {
	if !q.Has(name) {
		return def
	}
	return q.Get(name)
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// pathInt64 parses a named integer path parameter.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := pathParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidf("%s: value is not a valid integer: %q", name, raw)
	}
	return id, nil
}
