// Package fetch retrieves the latest CDI indicator rate from the Banco
// Central do Brasil SGS open-data API.
//
// The endpoint returns a JSON array of records ordered oldest to newest;
// only the "valor" field of the last record is consumed. Extraction uses
// gjson path expressions, so the value may arrive as a JSON string or a
// number.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultURL is the BCB SGS daily CDI series (bcdata.sgs.4392).
const DefaultURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.4392/dados"

// Client fetches the most recent indicator value from a JSON time-series
// endpoint.
type Client struct {
	// URL is the endpoint to call. Defaults to DefaultURL if empty.
	URL string

	// HTTPClient is optional; if nil a default client with timeout is used.
	HTTPClient *http.Client
}

// Latest performs one GET against the endpoint and returns the numeric
// parse of the last record's "valor" field.
//
// Returns:
//   - rate: the parsed value
//   - ok: false when the remote answered with a 4xx/5xx status (the
//     "no data" case; no error is returned for it)
//   - error: non-nil for any other failure (network unreachable,
//     non-array payload, empty series, missing or non-numeric valor)
//
// There are no retries and no caching of prior results.
func (c *Client) Latest(ctx context.Context) (float64, bool, error) {
	url := c.URL
	if url == "" {
		url = DefaultURL
	}

	cli := c.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	// Client and server error statuses mean the series has no data to
	// offer right now; the caller stops gracefully rather than failing.
	if resp.StatusCode >= http.StatusBadRequest {
		return 0, false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false, fmt.Errorf("read response: %w", err)
	}

	records := gjson.ParseBytes(body)
	if !records.IsArray() {
		return 0, false, fmt.Errorf("unexpected payload: not a JSON array")
	}

	items := records.Array()
	if len(items) == 0 {
		return 0, false, errors.New("unexpected payload: empty series")
	}

	valor := items[len(items)-1].Get("valor")
	if !valor.Exists() {
		return 0, false, errors.New("unexpected payload: last record has no valor field")
	}

	rate, err := strconv.ParseFloat(valor.String(), 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse valor %q: %w", valor.String(), err)
	}

	return rate, true, nil
}
