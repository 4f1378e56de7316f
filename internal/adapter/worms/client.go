// Package worms resolves scientific names against the World Register of
// Marine Species REST API, with in-memory and on-disk caching decorators.
package worms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

// matchBatchSize is the WoRMS limit on names per AphiaRecordsByMatchNames call.
const matchBatchSize = 50

// Client implements domain.NameResolver against the WoRMS REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a WoRMS client. baseURL is the REST root, e.g.
// "https://www.marinespecies.org/rest".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
		metrics:    metrics,
	}
}

// Resolve fuzzy-matches the given names, chunked to the API's batch limit.
// Only the first match of the first candidate per name is kept. Names the
// authority does not know are absent from the result; transport and decode
// failures are returned as errors.
func (c *Client) Resolve(ctx context.Context, names []string) (map[string]domain.TaxonMatch, error) {
	matches := make(map[string]domain.TaxonMatch, len(names))

	for start := 0; start < len(names); start += matchBatchSize {
		end := min(start+matchBatchSize, len(names))
		if err := c.resolveBatch(ctx, names[start:end], matches); err != nil {
			c.metrics.ResolverRequests.WithLabelValues("error").Inc()
			return nil, err
		}
		c.metrics.ResolverRequests.WithLabelValues("success").Inc()
	}

	return matches, nil
}

func (c *Client) resolveBatch(ctx context.Context, names []string, matches map[string]domain.TaxonMatch) error {
	params := url.Values{}
	for _, n := range names {
		params.Add("scientificnames[]", n)
	}
	params.Set("marine_only", "true")

	fullURL := fmt.Sprintf("%s/AphiaRecordsByMatchNames?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("match request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ResolverAPIDuration.Observe(time.Since(start).Seconds())

	// 204 means no name in the batch matched anything.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("worms API error: status %d: %s", resp.StatusCode, body)
	}

	// The response is one candidate list per input name, in request order.
	var candidates [][]aphiaRecord
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	for i, recs := range candidates {
		if i >= len(names) || len(recs) == 0 {
			continue
		}
		matches[names[i]] = recs[0].toMatch()
	}
	return nil
}

// aphiaRecord mirrors the subset of the WoRMS AphiaRecord payload this
// pipeline consumes.
type aphiaRecord struct {
	AphiaID        int    `json:"AphiaID"`
	ScientificName string `json:"scientificname"`
	Authority      string `json:"authority"`
	Status         string `json:"status"`
	ValidAphiaID   int    `json:"valid_AphiaID"`
	ValidName      string `json:"valid_name"`
	Kingdom        string `json:"kingdom"`
	Phylum         string `json:"phylum"`
	Class          string `json:"class"`
	Order          string `json:"order"`
	Family         string `json:"family"`
	Genus          string `json:"genus"`
	Rank           string `json:"rank"`
}

func (r aphiaRecord) toMatch() domain.TaxonMatch {
	accepted := r.ValidAphiaID
	if accepted == 0 {
		accepted = r.AphiaID
	}
	acceptedName := r.ValidName
	if acceptedName == "" {
		acceptedName = r.ScientificName
	}
	return domain.TaxonMatch{
		ScientificName: r.ScientificName,
		AcceptedName:   acceptedName,
		AphiaID:        accepted,
		Kingdom:        r.Kingdom,
		Phylum:         r.Phylum,
		Class:          r.Class,
		Order:          r.Order,
		Family:         r.Family,
		Genus:          r.Genus,
		Authorship:     r.Authority,
		Rank:           r.Rank,
	}
}
