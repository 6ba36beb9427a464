// Package search provides a thin client for the product search index. The
// recommender treats the index as an external collaborator: every call is
// context-bounded, fast-failing, and surfaces failures as typed errors the
// fusion layer can degrade around.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/pkg/models"
)

// UpstreamError wraps a failed call to the search index with the operation
// that failed. Callers are expected to degrade, not abort.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("search index %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ScoredDoc is a product document with the relevance score the index assigned
// to it for the issuing query.
type ScoredDoc struct {
	models.Product
	Score float64 `json:"score"`
}

type solrResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []ScoredDoc `json:"docs"`
	} `json:"response"`
	MoreLikeThis map[string]struct {
		Docs []ScoredDoc `json:"docs"`
	} `json:"moreLikeThis"`
}

// Client talks to a Solr core holding the product catalog.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient creates a client for the given core URL, e.g.
// "http://localhost:8983/solr/products". The timeout bounds every request so
// a slow index degrades a single source instead of blocking fusion.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetProduct looks up a single product by id. A missing product returns
// (nil, nil); only transport and decode failures are errors.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	params := url.Values{}
	params.Set("q", "id:"+escapeQueryValue(productID))
	params.Set("wt", "json")

	resp, err := c.selectQuery(ctx, "get_product", params)
	if err != nil {
		return nil, err
	}
	if len(resp.Response.Docs) == 0 {
		return nil, nil
	}
	return &resp.Response.Docs[0].Product, nil
}

// MoreLikeThis returns products the index considers similar to the seed,
// using term statistics over title, description, category and brand.
func (c *Client) MoreLikeThis(ctx context.Context, productID string, rows int) ([]ScoredDoc, error) {
	params := url.Values{}
	params.Set("q", "id:"+escapeQueryValue(productID))
	params.Set("mlt", "true")
	params.Set("mlt.fl", "title,description,category,brand")
	params.Set("mlt.mindf", "1")
	params.Set("mlt.mintf", "1")
	params.Set("fl", "*,score")
	params.Set("rows", strconv.Itoa(rows))
	params.Set("wt", "json")

	resp, err := c.selectQuery(ctx, "more_like_this", params)
	if err != nil {
		return nil, err
	}
	return resp.MoreLikeThis[productID].Docs, nil
}

// TopByCategory returns the most popular products of a category, optionally
// excluding one id.
func (c *Client) TopByCategory(ctx context.Context, category, excludeID string, rows int) ([]ScoredDoc, error) {
	fq := fmt.Sprintf("category:%q", category)
	if excludeID != "" {
		fq += " AND -id:" + escapeQueryValue(excludeID)
	}
	return c.filteredQuery(ctx, "top_by_category", fq, "popularity_score desc, rating desc", rows)
}

// TopByBrand returns the most popular products of a brand, optionally
// excluding one id.
func (c *Client) TopByBrand(ctx context.Context, brand, excludeID string, rows int) ([]ScoredDoc, error) {
	fq := fmt.Sprintf("brand:%q", brand)
	if excludeID != "" {
		fq += " AND -id:" + escapeQueryValue(excludeID)
	}
	return c.filteredQuery(ctx, "top_by_brand", fq, "popularity_score desc", rows)
}

// Trending returns products ranked by recent sales, optionally scoped to a
// category.
func (c *Client) Trending(ctx context.Context, category string, rows int) ([]ScoredDoc, error) {
	fq := ""
	if category != "" {
		fq = fmt.Sprintf("category:%q", category)
	}
	return c.filteredQuery(ctx, "trending", fq, "sales_last_30_days desc, popularity_score desc", rows)
}

// Ping checks that the core answers queries at all.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("q", "*:*")
	params.Set("rows", "0")
	params.Set("wt", "json")
	_, err := c.selectQuery(ctx, "ping", params)
	return err
}

func (c *Client) filteredQuery(ctx context.Context, op, fq, sort string, rows int) ([]ScoredDoc, error) {
	params := url.Values{}
	params.Set("q", "*:*")
	if fq != "" {
		params.Set("fq", fq)
	}
	params.Set("sort", sort)
	params.Set("rows", strconv.Itoa(rows))
	params.Set("wt", "json")

	resp, err := c.selectQuery(ctx, op, params)
	if err != nil {
		return nil, err
	}
	return resp.Response.Docs, nil
}

func (c *Client) selectQuery(ctx context.Context, op string, params url.Values) (*solrResponse, error) {
	reqURL := c.baseURL + "/select?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("unexpected status %d", httpResp.StatusCode)}
	}

	var resp solrResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return &resp, nil
}

// escapeQueryValue quotes ids that would otherwise be parsed as query syntax.
func escapeQueryValue(v string) string {
	return strconv.Quote(v)
}
