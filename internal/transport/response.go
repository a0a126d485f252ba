package transport

import (
	"encoding/json"
	"net/http"

	"github.com/cardanohealth/vault/internal/apierr"
	"github.com/cardanohealth/vault/internal/log"
)

// MarshalBody marshals res to JSON, writing a 500 and a generic body
// if marshaling itself fails — the one place a handler can't produce
// a typed error response, since the typed response is what failed to
// marshal in the first place.
func MarshalBody(res any, w http.ResponseWriter) []byte {
	body, err := json.Marshal(res)
	if err != nil {
		log.Log().Error("transport: failed to marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return []byte(`{"code":"Internal","msg":"internal server error"}`)
	}
	return body
}

// Respond writes body with statusCode, setting the JSON content type
// and headers that keep intermediate caches from ever storing a
// response that may carry wrapped key material or record metadata.
func Respond(statusCode int, body []byte, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// statusForCode maps the closed apierr.Code taxonomy onto HTTP status
// codes, per spec.md §6's error-surface description.
func statusForCode(code apierr.Code) int {
	switch code {
	case apierr.BadInput:
		return http.StatusBadRequest
	case apierr.Unauthorized:
		return http.StatusUnauthorized
	case apierr.NotFound:
		return http.StatusNotFound
	case apierr.Conflict:
		return http.StatusConflict
	case apierr.Denied:
		return http.StatusForbidden
	case apierr.RateLimited:
		return http.StatusTooManyRequests
	case apierr.Timeout:
		return http.StatusGatewayTimeout
	case apierr.StorageUnavailable, apierr.OracleUnavailable:
		return http.StatusServiceUnavailable
	case apierr.CryptoFailed, apierr.Inconsistent, apierr.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes aerr as an ErrorResponse with the matching HTTP
// status code.
func RespondError(aerr *apierr.Error, w http.ResponseWriter) {
	res := ErrorResponse{Code: string(aerr.Code), Reason: string(aerr.Reason), Msg: aerr.Msg}
	body := MarshalBody(res, w)
	Respond(statusForCode(aerr.Code), body, w)
}
