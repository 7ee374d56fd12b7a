package types

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Response is the handler's return envelope. Body is a JSON-encoded message
// string on success, or an {error, message} object on failure.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// OKResponse builds a 200 envelope whose body is the JSON encoding of v.
func OKResponse(v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		// Marshal of plain strings and maps of strings cannot fail; keep a
		// defensible envelope anyway.
		return Response{StatusCode: http.StatusOK, Body: `""`}
	}
	return Response{StatusCode: http.StatusOK, Body: string(data)}
}

// FailureResponse builds a failure envelope from an error. AppError codes
// drive the status; anything else becomes a 500 with the internal code.
func FailureResponse(err error) Response {
	code := ErrCodeInternalUnexpected
	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}
	body, _ := json.Marshal(map[string]string{
		"error":   string(code),
		"message": message,
	})
	return Response{StatusCode: code.HTTPStatus(), Body: string(body)}
}
