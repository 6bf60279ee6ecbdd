package wordpress

import (
	"context"
	"net/http"
	"net/url"
)

// termsURL returns the taxonomy collection endpoint.
func (c *Client) termsURL(taxonomy string) string {
	return c.url("wp", "v2", taxonomy)
}

// FindTermBySlug looks up a taxonomy term by slug. Returns nil when the
// taxonomy has no term with that slug.
func (c *Client) FindTermBySlug(ctx context.Context, taxonomy, slug string) (*Term, error) {
	endpoint := c.termsURL(taxonomy) + "?slug=" + url.QueryEscape(slug)

	var results []Term
	if err := c.Request(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// CreateTerm creates a taxonomy term. Parent is optional; zero means a
// top-level term.
func (c *Client) CreateTerm(ctx context.Context, taxonomy string, term Term) (*Term, error) {
	var created Term
	if err := c.Request(ctx, http.MethodPost, c.termsURL(taxonomy), term, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
