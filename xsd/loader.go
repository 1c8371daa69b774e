package xsd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// A Loader reads the schema document at a location. Locations are file
// paths or URLs, as produced by location.Resolve.
type Loader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, location string) ([]byte, error)

func (fn LoaderFunc) Load(ctx context.Context, location string) ([]byte, error) {
	return fn(ctx, location)
}

// maximum size of a schema document fetched over http
const maxDocumentSize = 64 << 20

type defaultLoader struct {
	client *http.Client
}

// NewLoader returns a Loader that reads file paths and file URLs from
// the local file system and fetches http and https URLs with client.
// If client is nil, http.DefaultClient is used.
func NewLoader(client *http.Client) Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return defaultLoader{client: client}
}

func (l defaultLoader) Load(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		return os.ReadFile(location)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if u.Host != "" {
			path = "//" + u.Host + path
		}
		return os.ReadFile(path)
	case "http", "https":
		return l.fetch(ctx, location)
	}
	return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, location)
}

func (l defaultLoader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	rsp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", location, rsp.Status)
	}
	return io.ReadAll(io.LimitReader(rsp.Body, maxDocumentSize))
}
