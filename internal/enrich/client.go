package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/imsgstats/imsgstats/internal/errors"
)

const DefaultTimeout = 10 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends req and decodes a 200 response body into out.
func doJSON(ctx context.Context, client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return errors.HTTPRequestFailed(req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.HTTPRequestFailed(req.URL.Redacted(), fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.HTTPRequestFailed(req.URL.Redacted(), fmt.Errorf("decode response: %w", err))
	}
	return nil
}
