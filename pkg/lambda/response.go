package lambda

import (
	"context"
	"encoding/json"
)

// Handler processes a request and always produces a response; failures are
// expressed as status codes rather than Go errors
type Handler func(ctx context.Context, req *Request) *Response

// fallbackBody is served when a response body cannot be encoded
var fallbackBody = []byte(`{"message":"Internal server error"}`)

// JSON builds a response with body encoded as JSON. headers are copied and
// Content-Type is set to application/json.
func JSON(statusCode int, body interface{}, headers map[string]string) *Response {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	out["Content-Type"] = "application/json"

	encoded, err := json.Marshal(body)
	if err != nil {
		return &Response{StatusCode: 500, Headers: out, Body: fallbackBody}
	}

	return &Response{StatusCode: statusCode, Headers: out, Body: encoded}
}

// Empty builds a response with no body
func Empty(statusCode int, headers map[string]string) *Response {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return &Response{StatusCode: statusCode, Headers: out, Body: []byte{}}
}
