// Package testutil contains common utility functions for unit tests.
package testutil // import "github.com/CognitoIQ/xsdtypes/internal/testutil"

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// FakeClient returns an HTTP client that replies to requests for the
// given URLs with the provided bodies, and with 404 to anything else.
func FakeClient(pages map[string][]byte) *http.Client {
	return &http.Client{
		Transport: mockRoundTrip(pages),
	}
}

type mockRoundTrip map[string][]byte

func (r mockRoundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	rsp := http.Response{
		Header:  make(http.Header),
		Request: req,
	}
	if body, ok := r[req.URL.String()]; ok {
		rsp.StatusCode = http.StatusOK
		rsp.Status = "200 OK"
		rsp.Body = io.NopCloser(bytes.NewReader(body))
	} else {
		rsp.StatusCode = http.StatusNotFound
		rsp.Status = "404 Not Found"
		rsp.Body = io.NopCloser(strings.NewReader("404 not found"))
	}
	return &rsp, nil
}
