package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cardanohealth/vault/internal/log"
)

// requestBody reads and returns r's entire body, the way the teacher's
// net package does before handing it to a typed decoder.
func requestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

// ReadRequestBody reads r's body, writing a 400 and logging on
// failure or an empty body. Callers that get a nil slice back must
// return without calling the handler's remaining logic — the response
// has already been written.
func ReadRequestBody(r *http.Request, w http.ResponseWriter) []byte {
	body, err := requestBody(r)
	if err != nil {
		log.Log().Error("transport: failed to read request body", "err", err, "path", r.URL.Path)
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil
	}
	if len(body) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return nil
	}
	return body
}

// HandleRequest unmarshals requestBody into a fresh *Req, writing
// errorResponse as a 400 JSON body on failure. A nil return means the
// response has already been written and the caller must stop.
func HandleRequest[Req any, Res any](requestBody []byte, w http.ResponseWriter, errorResponse Res) *Req {
	var req Req
	if err := json.Unmarshal(requestBody, &req); err != nil {
		body := MarshalBody(errorResponse, w)
		Respond(http.StatusBadRequest, body, w)
		return nil
	}
	return &req
}
