package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/lepinkainen/nyanko/internal/errors"
)

// DatasetteClient is a Store that posts rows to a Datasette instance running
// the datasette-insert plugin. Tables are created by the plugin on first
// insert, so CreateTable does nothing.
type DatasetteClient struct {
	baseURL  *url.URL
	rawURL   string
	database string
	apiToken string
	client   *http.Client
}

// NewDatasetteClient creates a client inserting into database at baseURL.
func NewDatasetteClient(baseURL, database, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		rawURL:   baseURL,
		database: database,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect validates the base URL. No request is made.
func (c *DatasetteClient) Connect(context.Context) error {
	u, err := url.Parse(c.rawURL)
	if err != nil {
		return fmt.Errorf("invalid datasette URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid datasette URL %q: scheme must be http or https", c.rawURL)
	}
	c.baseURL = u
	return nil
}

func (c *DatasetteClient) CreateTable(context.Context, string) error {
	return nil
}

// Upsert posts rows with replace set, so re-imports overwrite earlier rows.
func (c *DatasetteClient) Upsert(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	if c.baseURL == nil {
		return fmt.Errorf("datasette client is not connected")
	}

	u := *c.baseURL
	u.Path = path.Join(u.Path, "-/insert", c.database, table)

	body, err := json.Marshal(map[string]any{"rows": rows, "replace": true})
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewNetworkError(u.String(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("datasette rejected %d rows for %s: %s: %w",
			len(rows), table, bytes.TrimSpace(msg), errors.NewHTTPStatusError(u.String(), resp.StatusCode))
	}
	return nil
}

func (c *DatasetteClient) Close() error {
	return nil
}
