package preprocess

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// IsRemote reports whether source is fetched over HTTP rather than opened
// from the local filesystem.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a comma-separated table with a header row from a local path or
// an http(s) URL. A nil client means http.DefaultClient.
func Load(ctx context.Context, source string, client *http.Client) (*Table, error) {
	rc, err := open(ctx, source, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := readTable(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return t, nil
}

func open(ctx context.Context, source string, client *http.Client) (io.ReadCloser, error) {
	if !IsRemote(source) {
		in, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return in, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch input: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch input %s: unexpected status %s", source, resp.Status)
	}
	return resp.Body, nil
}
