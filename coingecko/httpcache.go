package coingecko

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
)

// diskCache caches successful GET responses on disk, keyed by URL.
// Historical prices never change, so entries have no expiry.
type diskCache struct {
	Dir       string
	Transport http.RoundTripper
}

func (c *diskCache) path(req *http.Request) string {
	sum := sha1.Sum([]byte(req.URL.String()))
	return filepath.Join(c.Dir, fmt.Sprintf("%x.http", sum))
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.Transport.RoundTrip(req)
	}
	path := c.path(req)
	if b, err := os.ReadFile(path); err == nil {
		if resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), req); err == nil {
			return resp, nil
		}
		// Unreadable entry, refetch over it.
		os.Remove(path)
	}

	resp, err := c.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	dump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return resp, nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err == nil {
		os.WriteFile(path, dump, 0o644)
	}
	// DumpResponse drained the body, serve the response from the dump.
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(dump)), req)
}
