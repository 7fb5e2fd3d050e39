package devserver

import (
	"encoding/json"
	"io"
)

// response wraps a successful result: {"result": ...}.
type response struct {
	Result any `json:"result"`
}

// errorResponse wraps a failure: {"error": {"code", "message", "details"}}.
type errorResponse struct {
	Error *Error `json:"error"`
}

func encodeResponse(w io.Writer, result any) error {
	return json.NewEncoder(w).Encode(response{Result: result})
}

func encodeErrorResponse(w io.Writer, err *Error) error {
	return json.NewEncoder(w).Encode(errorResponse{Error: err})
}
