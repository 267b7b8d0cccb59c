package proxy

import (
	"encoding/json"
	"net/http"

	"solanalysis/internal/solana"
)

// JSON-RPC error codes returned by the proxy.
const (
	CodeParse          = -32700
	CodeInvalidRequest = -32600
	CodeInternal       = -32603
	CodeRateLimited    = -32005
)

const failedMessage = "Failed to fetch data from Solana"

// Error is a proxy failure with the HTTP status it is served with.
type Error struct {
	Status  int
	Code    int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, a *solana.RPCError when the last
// upstream answered with a JSON-RPC error.
func (e *Error) Unwrap() error {
	return e.err
}

var (
	errBatch          = &Error{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: "Batch requests are not supported"}
	errParse          = &Error{Status: http.StatusBadRequest, Code: CodeParse, Message: "Parse error"}
	errInvalidRequest = &Error{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: "Invalid request"}
	errRateLimited    = &Error{
		Status:  http.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: "Rate limit exceeded. Please try again later.",
		err:     solana.ErrRateLimited,
	}
)

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// WriteError writes an error body in the format the proxy uses.
func WriteError(w http.ResponseWriter, status, code int, message string) {
	writeError(w, &Error{Status: status, Code: code, Message: message})
}

func writeError(w http.ResponseWriter, e *Error) {
	var body errorBody
	body.Error.Message = e.Message
	body.Error.Code = e.Code

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(body)
}
