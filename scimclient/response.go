package scimclient

import (
	"encoding/json"
	"net/http"
)

// Response is a normalized HTTP response. The body is fully read and the
// connection released before the response is returned.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	decoded   any
	decodeErr error
	parsed    bool
}

// JSON decodes and caches the body. An empty body decodes to nil without
// error.
func (r *Response) JSON() (any, error) {
	if !r.parsed {
		r.parsed = true

		if len(r.Body) > 0 {
			r.decodeErr = json.Unmarshal(r.Body, &r.decoded)
		}
	}

	return r.decoded, r.decodeErr
}

// JSONMap returns the body as a JSON object, or nil when the body is
// empty, malformed, or not an object. Conformance checks treat all three
// the same way.
func (r *Response) JSONMap() map[string]any {
	doc, err := r.JSON()
	if err != nil {
		return nil
	}

	m, _ := doc.(map[string]any)

	return m
}
